package scraper

// Registry maps site names to their extractor variant. Dispatch by name
// replaces per-site subclassing: each variant carries its own behavior
// behind the shared Extractor contract.
type Registry struct {
	extractors map[string]Extractor
	order      []string
}

// NewRegistry creates a registry holding the given extractors
func NewRegistry(extractors ...Extractor) *Registry {
	r := &Registry{extractors: make(map[string]Extractor)}
	for _, e := range extractors {
		if _, exists := r.extractors[e.Site()]; exists {
			continue
		}
		r.extractors[e.Site()] = e
		r.order = append(r.order, e.Site())
	}
	return r
}

// Lookup returns the extractor registered for the site name
func (r *Registry) Lookup(site string) (Extractor, bool) {
	e, ok := r.extractors[site]
	return e, ok
}

// Sites returns the supported site names in registration order
func (r *Registry) Sites() []string {
	sites := make([]string, len(r.order))
	copy(sites, r.order)
	return sites
}

// Package feeds collects content candidates from configured external
// sources.
//
// A Descriptor names one source and how to read it: an RSS or Atom endpoint,
// or an HTML listing page to scrape. RSS is the connector for both shapes;
// FetchAll runs the whole catalog concurrently and never lets one bad source
// fail the run. Scraper enriches fetched items with article bodies and
// social-card images in a second pass. Catalogs load from a TOML file or
// fall back to the compiled-in defaults.
package feeds

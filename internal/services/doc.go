// Package services defines the [Taxonomy] interface for the storefront term store and implements it over HTTP.
//
// # Taxonomy Interface
//
// The edit engine only needs five calls from the storefront: create a term, look one up by slug,
// attach a product to a term, and read or write the term's SEO copy.
//
// # Storefront Implementation
//
// [TaxonomyService] calls the curator REST routes under /wp-json/curator/v1 on the configured base URL.
//
// Authentication is either an application password sent as HTTP basic auth, or OAuth2 client credentials
// when taxonomy.client_id and taxonomy.token_url are set. The [clientcredentials.Config] client fetches
// and refreshes tokens on its own.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrServiceUnavailable] : Transport failure, service unreachable or timed out
//   - [shared.ErrAPIRequest] : Non-2xx response; the error text carries the response's message field when present
package services

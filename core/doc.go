// Package core contains the messenger domain contracts, the error taxonomy,
// configuration loading, and the Graph API client (request formatting plus
// the message and person resource operations). Lower-level adapters depend
// on this package; core must not depend on transport or webhook adapters.
package core

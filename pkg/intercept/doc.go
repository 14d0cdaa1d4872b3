// Package intercept is a small in-process HTTP interception runtime for
// routes synthesized from web archives.
//
// A Runtime holds an ordered list of webarchive routes and answers live
// requests with the first one that matches and does not decline. It can be
// plugged in on either side of an HTTP exchange:
//
//	rt := intercept.New(intercept.WithUnhandled(intercept.UnhandledError))
//	if err := webarchive.Install(rt, doc, webarchive.Options{}); err != nil {
//	    t.Fatal(err)
//	}
//
//	// Client side: no network involved.
//	resp, err := rt.Client().Get("https://api.example.com/users")
//
//	// Server side: serve the archive, directly or as a forward proxy.
//	srv := httptest.NewServer(rt)
//
// # Registration Order
//
// Each Use call registers its routes ahead of previously registered ones, so
// overrides added later take precedence. Within one call the given order is
// kept. Reset drops everything.
//
// # Unhandled Requests
//
// UnhandledError fails round trips with a *NoMatchError and answers 404 when
// serving. UnhandledNotFound always answers 404. UnhandledBypass forwards to
// the fallback transport.
//
// # Consume-once Routes
//
// A route built with UseUniqueRequests answers exactly one live request. The
// runtime claims such a route before resolving and gives the claim back if
// the route declines, so concurrent requests cannot both consume it.
package intercept

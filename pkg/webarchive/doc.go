// Package webarchive turns captured HTTP traffic into mock routes.
//
// Every archive entry with a supported method becomes one Route: a matcher
// on method and absolute URL (query string excluded) plus the recorded
// response it answers with. Routes are handed to an interception runtime
// through the Registrar interface:
//
//	doc, err := har.LoadFile("session.har")
//	if err != nil {
//	    return err
//	}
//	rt := intercept.New()
//	err = webarchive.Install(rt, doc, webarchive.Options{
//	    StrictQueryString: true,
//	    ResponseDelay:     webarchive.DelayNone,
//	})
//
// # Matching
//
// Methods are matched case-insensitively against get, post, put, delete,
// patch, head and options; entries using any other verb are skipped. URLs are
// compared after normalization (see MatchKey). With StrictQueryString the raw
// query string must also be identical, otherwise the route declines and the
// runtime moves on to the next candidate.
//
// DomainMappings rewrite captured URLs before matching, so a capture taken
// against one origin can answer requests for another:
//
//	webarchive.Options{
//	    DomainMappings: webarchive.DomainMappings{
//	        {From: "http://localhost:4000", To: "http://localhost:1000"},
//	    },
//	}
//
// # Responses
//
// Base64 content is decoded. Content-Encoding headers are dropped since the
// body is never re-compressed. Access-Control-Allow-Origin values go through
// ResolveCrossOrigins when set. Set-Cookie headers become structured
// http.Cookie values whose domain defaults to the matched host.
//
// # Delays
//
// By default a response is held back for the time recorded in the entry.
// DelayNone disables that; a DelayFunc receives the recorded delay and a
// clone of the live request and returns the delay to apply.
//
// # Logging
//
// Diagnostics go to Options.Logger, or slog.Default() when unset. Quiet
// silences all of them.
package webarchive

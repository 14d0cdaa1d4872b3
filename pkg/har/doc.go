// Package har decodes HTTP Archive (HAR) captures.
//
// Both the standard `{"log": {"entries": [...]}}` layout and a bare
// `{"entries": [...]}` list are accepted. Decoding is deliberately lenient:
// beyond well-formed JSON, nothing about the archive is validated here.
// Consumers decide what to do with entries they cannot use.
//
//	doc, err := har.LoadFile("session.har")
//	if err != nil {
//	    return err
//	}
//	for _, e := range doc.AllEntries() {
//	    fmt.Println(e.Request.Method, e.Request.URL)
//	}
package har

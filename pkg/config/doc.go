// Package config loads harmock configuration files.
//
// A configuration file is YAML (.yaml, .yml) or JSON (anything else) and
// describes how an archive is turned into routes and how the server behaves:
//
//	strictQueryString: true
//	useUniqueRequests: false
//	responseDelay: none              # real | none
//	responseDelayExpr: recorded / 2  # overrides responseDelay
//	corsOrigin: https://app.local
//	domainMappings:
//	  http://localhost:4000: http://localhost:1000
//	include: ["**/api/**"]
//	exclude: ["**/*.png"]
//	onUnhandled: notfound            # error | bypass | notfound
//	listen: 127.0.0.1:4280
//	log:
//	  level: debug
//	  format: json
//
// Domain mappings keep the order they are written in; the first matching
// source prefix wins.
//
// Loading:
//
//	cfg, err := config.LoadFromFile("harmock.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	opts, err := cfg.Options(logger)
package config

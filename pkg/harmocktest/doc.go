// Package harmocktest replays HAR archives inside Go tests.
//
// # Basic Usage
//
// Load an archive and send requests through the returned client. Requests
// never touch the network, whichever host they are addressed to:
//
//	func TestCheckout(t *testing.T) {
//	    srv := harmocktest.Load(t, "testdata/checkout.har", webarchive.Options{})
//
//	    api := checkout.NewClient(checkout.WithHTTPClient(srv.Client()))
//	    if err := api.Pay(ctx, order); err != nil {
//	        t.Fatal(err)
//	    }
//
//	    srv.AssertCalled(t, "POST", "https://pay.example.com/v1/charges")
//	    srv.AssertNoUnhandled(t)
//	}
//
// # Synthetic Entries
//
// Entries can be added on top of an archive with a fluent builder. Later
// entries take precedence:
//
//	srv.Entry("GET", "https://api.example.com/users/1").
//	    WithStatus(404).
//	    WithJSON(map[string]string{"error": "not found"}).
//	    Reply()
//
// # Over the Network
//
// Start serves the routes on a local listener for code that cannot take a
// custom client. MapOrigin points a recorded origin at the listener:
//
//	srv := harmocktest.New(t, webarchive.Options{})
//	srv.MapOrigin("https://api.example.com")
//	srv.LoadArchive("testdata/users.har")
//
//	resp, err := http.Get(srv.URL() + "/users/1")
//
// Recorded delays are not replayed and route diagnostics are silenced unless
// the options ask for them.
package harmocktest

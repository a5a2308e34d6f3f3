// Package pumproom is the Go SDK for embedding PumpRoom interactive tasks.
//
// A Client authenticates users against the PumpRoom backend, caches the
// resulting identity across restarts, routes the message protocol spoken by
// embedded task frames and exposes the tracker endpoints for states and
// course data.
//
// Basic usage:
//
//	config := pumproom.NewConfig("api-key", "academy").
//	    WithPageURL("https://school.example.com/lesson/3")
//
//	client, err := pumproom.New(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	user, err := client.Authenticate(ctx, pumproom.AuthOptions{
//	    LMS: &pumproom.LMSProfile{ID: "42", Name: "Alice"},
//	})
//
// Frames talk to the client through any transport implementing Conn; inbound
// bytes are fed to Client.Dispatch. The wsbridge subpackage adapts a
// WebSocket connection.
package pumproom

// Package tracker is a client-side telemetry SDK for games and learning
// activities.
//
// Application code reports semantic events through a Tracker (choices,
// clicks, screens, variable updates and zones). Events are buffered in
// arrival order and delivered in batches by Flush, either to a remote
// collector over HTTP or appended to a blob in local storage.
//
// Delivery to the collector needs a session. Login exchanges credentials for
// a user token; Start opens a tracking session for a tracking code and
// captures the xAPI actor and activity id the collector assigns:
//
//	t, err := tracker.New(config.Default())
//	if err != nil {
//		return err
//	}
//	if !t.Start(ctx, "my-game-code") {
//		// inspect t.Session() and the logs
//	}
//	t.Screen("start")
//	t.Var("score", 42)
//	t.Click(128, 256, "Button1")
//	t.Flush(ctx)
//
// The public operations never return transport errors. Outcomes are visible
// through their boolean or count results, through Connected and Active, and
// through structured log records emitted on the logger given to WithLogger.
//
// Batches are serialized in one of four formats (see package format). A
// failed network delivery drops the batch unless the tracker was built with
// WithRequeueOnFailure, in which case it is delivered first on the next
// successful flush.
package tracker

// Package fatal reports errors that escaped the application.
//
// A Reporter is an explicit service: create one with New, make it the
// process-wide reporter with Install, and pass it to router.Config as the
// FatalReporter. Every report is logged, sent to the backend on a best
// effort basis, and followed by a navigation to the error page.
//
//	rep := fatal.New(fatal.Config{
//		Sender:    &fatal.HTTPSender{Endpoint: "http://localhost:3000/api/log-error"},
//		Navigator: history,
//	})
//	restore := fatal.Install(rep)
//	defer restore()
package fatal

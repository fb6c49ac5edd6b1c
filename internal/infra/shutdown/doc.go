// Package shutdown coordinates graceful process termination.
//
// A Handler waits for SIGINT/SIGTERM (or for its context to end), then
// runs the registered hooks in reverse registration order under a
// shared timeout:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown(srv.Shutdown)
//	err := h.Wait(ctx)
package shutdown

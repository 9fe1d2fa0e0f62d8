// Package server hosts filter widgets.
//
// Each GET /f/{widget} creates an Instance: a filters.Synchronizer mounted
// on the page URL, rendered to HTML with hydration IDs. The page loads the
// thin client, which opens a WebSocket to /_filters/ws?instance=<id> and
// forwards events on hydrated elements as JSON:
//
//	{"hid":"h3","event":"change","value":"8GB","checked":false,"key":"","seq":12}
//
// The server runs the handler registered for the HID, re-renders the widget
// and replies with one of:
//
//	{"type":"html","html":"...","seq":12}
//	{"type":"navigate","url":"..."}
//	{"type":"result","body":"..."}
//	{"type":"error","message":"..."}
//
// html and error replies echo the event's seq. The client drops an html
// reply older than its latest event so a slow reply cannot reset an input
// the user kept typing into.
//
// An instance lives as long as its connection. A second connection to the
// same instance replaces the first. Instances whose page never connects are
// closed by the idle sweeper started with Run.
package server

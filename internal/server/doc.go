// Package server implements the WebSocket control endpoint started by
// `docon serve`.
//
// Clients connect to /ws and send one JSON text frame per request. Each
// request gets exactly one reply, in order:
//
//	→ {"id":"1","op":"pulse","channel":2,"durationMs":500}
//	← {"id":"1","ok":true,"result":{"channel":2,"coil":1,...}}
//
//	→ {"id":"2","op":"on","channel":3}
//	← {"id":"2","ok":false,"error":"channel must be 1 or 2, got 3","kind":"validation"}
//
// Supported ops: on, off, control (with "on"), pulse, invert, map, cfg,
// status, channel, config. A failed settings save is reported in
// "warning" while the request itself succeeds. Requests from all clients
// go through the same control.Service, which runs them one at a time.
//
// GET /healthz returns 200 and does not touch the device.
package server

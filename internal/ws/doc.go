// Package ws implements the live calculator websocket at /ws/calc.
//
// Each text frame a client sends is a JSON api.ValvesRequest. The hub replies
// on the same connection with a Message: event "report" carrying the
// valve.Report, or event "error" carrying the message and error code. State
// is per connection only; nothing is shared between clients.
//
// When the hub runs with a positive interval it re-sends every client's last
// successful report on each tick (event "refresh"), which keeps dashboards
// fed without re-posting the config.
package ws

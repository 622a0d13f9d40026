// Package http describes one exchange carried over HTTP by the bridges in
// [trooba-http-transport/application/http/actor/client] and
// [trooba-http-transport/application/http/actor/server].
//
// [Request] is the merged view of static endpoint configuration and a single
// call. [Response] is the fully buffered result of an exchange.
package http

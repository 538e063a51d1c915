// Package webhooks receives Messenger webhook requests.
//
// A GET request is the subscription handshake: the dispatcher echoes
// hub.challenge when hub.verify_token matches. A POST request is a delivery:
// it is acknowledged with 200 "OK" first, then authenticated against the
// x-hub-signature header (HMAC-SHA1 of the raw body) when a secret is
// configured, and finally fanned out through the inbound registry.
package webhooks

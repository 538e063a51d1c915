// Package inbound holds the subscriber registry for webhook notifications.
//
// A delivery fans out in a fixed order: request, then each entry, then each
// messaging event, then a messages notification for events carrying text.
// Handlers run synchronously on the delivering goroutine.
package inbound

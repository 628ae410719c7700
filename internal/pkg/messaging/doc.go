// Package messaging hides the broker behind Publisher and Consumer so the OTP
// and delivery modules do not care whether events travel over NATS, NSQ,
// Kafka, Google Pub/Sub or the in-process memory broker.
package messaging

// Package telemetry moves live BPM samples from the practice device to the rest of the system.
//
// # Ingestion
//
// [Ingestor] subscribes to the device's MQTT topic (esp32/midi by default). Each payload is a
// UTF-8 decimal number; anything that does not parse to a finite, non-negative float is logged
// and dropped. Accepted samples are handed to the [Broker].
//
// # Fan-out
//
// [Broker] keeps one single-slot channel per subscriber. Publishing never blocks: when a
// subscriber has not consumed the previous sample it is replaced, so readers always see the
// newest value.
//
// # Recording
//
// [Recorder] turns samples into practice logs for the active piece, throttled with a token
// bucket so a chatty device cannot flood the database.
package telemetry

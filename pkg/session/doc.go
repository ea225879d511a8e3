/*
Package session manages the live controllers of a multi-user host.

Each session owns one controller. The Manager serializes access per session with
reference-counted local locks, optionally backed by a distributed lock so that
replicas sharing a preference store do not interleave writes.
*/
package session

// Package utils provides small helpers shared by the transport layers:
// JSON and text response writers, the resty client used to reach peers and
// time-ordered identifiers for trace ids and node ids.
package utils

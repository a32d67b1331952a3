package model

import "fmt"

// TupleKey builds the canonical connection key
// "srcIP:srcPort->dstIP:dstPort:protocol". The same key doubles as the
// idempotent merge identity of a ConnectionSummary.
func TupleKey(srcIP string, srcPort int, dstIP string, dstPort int, protocol string) string {
	return fmt.Sprintf("%s:%d->%s:%d:%s", srcIP, srcPort, dstIP, dstPort, protocol)
}

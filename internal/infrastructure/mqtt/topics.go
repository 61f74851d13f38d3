package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for the Postwatch MQTT hierarchy.
//
// Device report topics use the flat scheme: postwatch/{category}/{mac}
// where mac is the canonical uppercase colon-separated form.
const (
	// TopicPrefix is the base for all Postwatch topics.
	TopicPrefix = "postwatch"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "postwatch/system"
)

// Topics provides builders for Postwatch MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	motionTopic := topics.Motion("AA:BB:CC:DD:EE:FF")
//	// Returns: "postwatch/motion/AA:BB:CC:DD:EE:FF"
type Topics struct{}

// Motion returns the topic a device publishes motion reports on.
//
// Example: postwatch/motion/AA:BB:CC:DD:EE:FF
func (Topics) Motion(mac string) string {
	return fmt.Sprintf("%s/motion/%s", TopicPrefix, mac)
}

// SystemInfo returns the topic a device publishes health reports on.
//
// Example: postwatch/sysinfo/AA:BB:CC:DD:EE:FF
func (Topics) SystemInfo(mac string) string {
	return fmt.Sprintf("%s/sysinfo/%s", TopicPrefix, mac)
}

// SystemStatus returns the service status topic (online/offline LWT).
//
// Example: postwatch/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllMotion returns a pattern matching motion reports from all devices.
//
// Pattern: postwatch/motion/+
func (Topics) AllMotion() string {
	return fmt.Sprintf("%s/motion/+", TopicPrefix)
}

// AllSystemInfo returns a pattern matching health reports from all devices.
//
// Pattern: postwatch/sysinfo/+
func (Topics) AllSystemInfo() string {
	return fmt.Sprintf("%s/sysinfo/+", TopicPrefix)
}

// AllTopics returns a pattern matching all Postwatch topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: postwatch/#
func (Topics) AllTopics() string {
	return "postwatch/#"
}

// MACFromTopic extracts the MAC segment from a device report topic of the
// form postwatch/{category}/{mac}. Returns the empty string if the topic
// does not have exactly that shape.
func MACFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != TopicPrefix || parts[2] == "" {
		return ""
	}
	return parts[2]
}

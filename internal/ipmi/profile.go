// SPDX-License-Identifier: BSD-3-Clause

package ipmi

// Profile is a declarative description of how to drive one family of
// BMCs through ipmitool: what to run at startup and shutdown, how to
// read the SDR listing, and how each fan zone takes a speed.
type Profile struct {
	Extends   string    `json:"extends,omitempty"`
	Metadata  Metadata  `json:"metadata"`
	Protocols Protocols `json:"protocols"`
}

// Metadata identifies the hardware family a profile targets. ModelFamily
// is a list because one profile commonly covers several board SKUs.
type Metadata struct {
	Vendor      string   `json:"vendor"`
	ModelFamily []string `json:"model_family,omitempty"`
}

// Protocols holds the one protocol section this agent understands. It is
// a struct (not a map) so future protocols can be added without breaking
// existing profiles.
type Protocols struct {
	IPMI *IpmiProtocol `json:"ipmi,omitempty"`
}

// IpmiProtocol is the whole of a profile's IPMI-specific behavior.
type IpmiProtocol struct {
	Parsing   Parsing   `json:"parsing"`
	FanZones  []FanZone `json:"fan_zones,omitempty"`
	Lifecycle Lifecycle `json:"lifecycle"`
}

// Parsing tells the SDR CSV parser which unit-column substring identifies
// a temperature row vs. a fan row. SDRFormat is "csv" in every profile
// shipped today.
type Parsing struct {
	SDRFormat      string `json:"sdr_format,omitempty"`
	FanMatchToken  string `json:"fan_match_token"`
	TempMatchToken string `json:"temp_match_token"`
}

// FanZone is one independently addressable fan/fan-group on the BMC.
type FanZone struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	SpeedTranslation SpeedTranslation `json:"speed_translation"`
	Commands         FanZoneCommands  `json:"commands"`
}

// SpeedTranslationKind selects the percent-to-wire-value formula a zone
// expects.
type SpeedTranslationKind string

const (
	SpeedTranslationByteScale  SpeedTranslationKind = "byte_scale"
	SpeedTranslationDecimalHex SpeedTranslationKind = "decimal_hex"
	SpeedTranslationInteger    SpeedTranslationKind = "integer"
)

// SpeedTranslation parametrizes the byte_scale formula; OutputMin/OutputMax
// are ignored by the other two kinds.
type SpeedTranslation struct {
	Kind      SpeedTranslationKind `json:"kind"`
	OutputMin int                  `json:"output_min,omitempty"`
	OutputMax int                  `json:"output_max,omitempty"`
}

// FanZoneCommands holds the raw ipmitool command templates for a zone.
// Only SetSpeed is required today; the struct leaves room for future
// per-zone command kinds without a breaking change.
type FanZoneCommands struct {
	SetSpeed Command `json:"set_speed"`
}

// Command is one ipmitool invocation template. Bytes is a "raw" argument
// string that may contain the `{{SPEED}}`/`{{SPEED_HEX}}` placeholders;
// Critical marks a lifecycle command whose failure must abort
// initialization. Type is "ipmitool_raw" in every profile shipped today
// and exists so profiles can grow other command transports without a
// schema break.
type Command struct {
	Name     string `json:"name,omitempty"`
	Type     string `json:"type,omitempty"`
	Bytes    string `json:"bytes,omitempty"`
	Critical bool   `json:"critical,omitempty"`
}

// Lifecycle holds the two command sequences run once per process
// lifetime: Initialization on first use, ResetToFactory on shutdown,
// disconnect, or emergency.
type Lifecycle struct {
	Initialization []Command `json:"initialization,omitempty"`
	ResetToFactory []Command `json:"reset_to_factory,omitempty"`
}

package domain

import "net"

// ProxyRecord is a single proxy endpoint scraped from the source page.
// Both fields are kept exactly as they appear in the table.
type ProxyRecord struct {
	IP   string `json:"ip"`
	Port string `json:"port"`
}

func (p ProxyRecord) String() string {
	return net.JoinHostPort(p.IP, p.Port)
}

// PopulationTrigger tells why the proxy list was (re)built.
type PopulationTrigger string

const (
	TriggerLazy    PopulationTrigger = "lazy"
	TriggerRefresh PopulationTrigger = "refresh"
)

// Selection strategies, used as metric labels.
const (
	StrategyRandom = "random"
	StrategySample = "sample"
	StrategySticky = "sticky"
)

package InputParameters

import (
	"fmt"
	"sort"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type InputParameters struct {
	Title              string  `yaml:"Title"`
	NumElements        int     `yaml:"NumElements"`
	UnknownsPerElement int     `yaml:"UnknownsPerElement"`
	NumConfigs         int     `yaml:"NumConfigs"`
	Interconnected     bool    `yaml:"Interconnected"`
	SecondaryMBFs      bool    `yaml:"SecondaryMBFs"`
	DisableCoupling    bool    `yaml:"DisableCoupling"`
	Reduce             bool    `yaml:"Reduce"`
	Threshold          float64 `yaml:"Threshold"`
	ParallelDegree     int     `yaml:"ParallelDegree"`
	HWCounters         bool    `yaml:"HWCounters"`
	// InactiveElements maps a configuration to the elements excluded
	// from its excitation
	InactiveElements map[int][]int `yaml:"InactiveElements"`
}

func (ip *InputParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *InputParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%d x %d]\t\t= Elements x Unknowns per element\n", ip.NumElements, ip.UnknownsPerElement)
	fmt.Printf("[%d]\t\t\t= Solution configurations\n", ip.NumConfigs)
	fmt.Printf("[%v]\t\t= Interconnected\n", ip.Interconnected)
	fmt.Printf("[%v]\t\t= Secondary MBFs\n", ip.SecondaryMBFs)
	fmt.Printf("[%v]\t\t= Reduce (threshold %4.1f)\n", ip.Reduce, ip.Threshold)
	keys := make([]int, 0, len(ip.InactiveElements))
	for k := range ip.InactiveElements {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, key := range keys {
		fmt.Printf("InactiveElements[%d] = %v\n", key, ip.InactiveElements[key])
	}
}

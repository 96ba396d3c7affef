/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/notargets/gocbfm/InputParameters"
	"github.com/notargets/gocbfm/array"
	"github.com/notargets/gocbfm/mbf"
	"github.com/notargets/gocbfm/moment"
)

// SolveCmd represents the solve command
var SolveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Generate reduced MBFs for a synthetic linear array",
	Long: `
Builds a synthetic linear-array MoM problem from the input parameters,
runs the primary/secondary MBF generation and SVD reduction, and
reports the per-stage statistics.

gocbfm solve -I input.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("solve called")
		ipFile, err := cmd.Flags().GetString("inputParametersFile")
		if err != nil {
			panic(err)
		}
		profMode, _ := cmd.Flags().GetString("profile")
		switch profMode {
		case "cpu":
			defer profile.Start(profile.CPUProfile).Stop()
		case "mem":
			defer profile.Start(profile.MemProfile).Stop()
		}
		ip := processInput(ipFile)
		RunSolve(ip)
	},
}

func processInput(ipFile string) (ip *InputParameters.InputParameters) {
	var (
		err error
	)
	if len(ipFile) == 0 {
		err := fmt.Errorf("must supply an input parameters file (-I, --inputParametersFile) in YAML format")
		fmt.Printf("error: %s\n", err.Error())
		exampleFile := `
########################################
Title: "8 Element Array"
NumElements: 8
UnknownsPerElement: 12
NumConfigs: 2
Interconnected: false
SecondaryMBFs: true
Reduce: true
Threshold: 4
ParallelDegree: 4
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		os.Exit(1)
	}
	var data []byte
	if data, err = ioutil.ReadFile(ipFile); err != nil {
		panic(err)
	}
	ip = &InputParameters.InputParameters{
		NumConfigs: 1,
		Threshold:  4,
	}
	if err = ip.Parse(data); err != nil {
		panic(err)
	}
	ip.Print()
	return
}

func init() {
	rootCmd.AddCommand(SolveCmd)
	SolveCmd.Flags().StringP("inputParametersFile", "I", "", "YAML file of input parameters describing the array and MBF options")
	SolveCmd.Flags().StringP("profile", "p", "", "write a profile while solving: cpu or mem")
}

func RunSolve(ip *InputParameters.InputParameters) {
	var (
		l   *array.Layout
		p   *moment.DenseProvider
		err error
	)
	if ip.Interconnected {
		l, p, err = moment.NewInterconnectedArray(ip.NumElements, ip.UnknownsPerElement, ip.NumConfigs)
	} else {
		l, p, err = moment.NewLinearArray(ip.NumElements, ip.UnknownsPerElement, ip.NumConfigs)
	}
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	for s, elems := range ip.InactiveElements {
		for _, d := range elems {
			l.SetActive(d, s, false)
		}
	}
	e, err := mbf.NewEngine(l, p, mbf.Config{
		ComputeSecondary: ip.SecondaryMBFs,
		CouplingDisabled: ip.DisableCoupling,
		Reduce:           ip.Reduce,
		Threshold:        ip.Threshold,
		ParallelDegree:   ip.ParallelDegree,
		Verbose:          true,
		HWCounters:       ip.HWCounters,
	})
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	r, err := e.Generate()
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	r.Stats.Print()
}

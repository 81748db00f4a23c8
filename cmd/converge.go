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

	"github.com/notargets/godpg/verification"
	"github.com/spf13/cobra"
)

// convergeCmd represents the converge command
var convergeCmd = &cobra.Command{
	Use:   "converge",
	Short: "Run a manufactured solution refinement study",
	Long: `
Solves the steady problem of the input file with Newton iterations on a sequence of unit box
meshes and prints the L2 errors of the solution and of the reconstructed gradients with the
observed convergence orders. Every boundary is closed by the default condition of the input.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		levels, _ := cmd.Flags().GetIntSlice("levels")
		ip, r, err := readParameters()
		if err != nil {
			return
		}
		ip.Print()
		pb, err := newProblem(ip, r)
		if err != nil {
			return
		}
		bct, ok := r.BCs["default"]
		if !ok {
			return fmt.Errorf("a converge study needs a default boundary condition")
		}
		s := &verification.Study{
			Model:      pb.model,
			Flux:       r.Flux,
			Element:    r.Element,
			P:          ip.PolynomialOrder,
			Levels:     levels,
			Solution:   pb.solution,
			BC:         bct,
			Collocated: ip.Collocated,
			Options:    ip.Options(r),
			Params:     pb.params,
		}
		lvs, err := s.Run()
		if err != nil {
			return
		}
		printStudy(lvs)
		return
	},
}

func printStudy(lvs []verification.Level) {
	sol, grad := verification.Orders(lvs)
	fmt.Printf("%6s %12s %8s %12s %8s %6s\n", "N", "L2 error", "order", "grad error", "order", "iters")
	for i, lv := range lvs {
		so, gro := "", ""
		if i > 0 {
			so = fmt.Sprintf("%8.3f", sol[i-1])
			if len(grad) > 0 {
				gro = fmt.Sprintf("%8.3f", grad[i-1])
			}
		}
		fmt.Printf("%6d %12.5e %8s %12.5e %8s %6d\n", lv.N, lv.Error, so, lv.GradError, gro, lv.Iterations)
	}
	if len(lvs) > 1 {
		h, e := make([]float64, len(lvs)), make([]float64, len(lvs))
		for i, lv := range lvs {
			h[i], e[i] = lv.H, lv.Error
		}
		fmt.Printf("fitted order %8.3f\n", verification.FittedOrder(h, e))
	}
}

func init() {
	rootCmd.AddCommand(convergeCmd)
	convergeCmd.Flags().IntSlice("levels", []int{4, 8, 16}, "elements per direction of each level")
}

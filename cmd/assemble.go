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
	"time"

	"github.com/notargets/godpg/types"
	"github.com/notargets/godpg/utils"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

// assembleCmd represents the assemble command
var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Assemble the residual, and the Jacobian for implicit methods",
	Long: `
Builds the mesh and initial solution of the input file, then assembles the residual (explicit)
or the residual and block Jacobian (implicit) the requested number of times, reporting timings,
residual norms and the Jacobian sparsity.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			repeat, _ = cmd.Flags().GetInt("repeat")
			prof, _   = cmd.Flags().GetString("profile")
		)
		switch prof {
		case "cpu":
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		case "mem":
			defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
		case "":
		default:
			return fmt.Errorf("unknown profile \"%s\", choose cpu or mem", prof)
		}
		ip, r, err := readParameters()
		if err != nil {
			return
		}
		ip.Print()
		pb, err := newProblem(ip, r)
		if err != nil {
			return
		}
		runAssembly(pb, repeat)
		return
	},
}

func runAssembly(pb *problem, repeat int) (J *utils.BlockJacobian) {
	if repeat < 1 {
		repeat = 1
	}
	implicit := pb.r.Method == types.Method_Implicit
	if implicit {
		J = utils.NewBlockJacobian(pb.mesh.BlockSizes())
	}
	start := time.Now()
	for i := 0; i < repeat; i++ {
		if implicit {
			pb.asm.ResidualAndJacobian(J)
		} else {
			pb.asm.Residual()
		}
	}
	elapsed := time.Since(start)
	var dofs int
	for _, n := range pb.mesh.BlockSizes() {
		dofs += n
	}
	fmt.Printf("%d volumes, %d faces, %d degrees of freedom\n", len(pb.mesh.Volumes), len(pb.mesh.Faces), dofs)
	fmt.Printf("%d passes in %v, %v per pass\n", repeat, elapsed, elapsed/time.Duration(repeat))
	for v, norm := range pb.asm.ResidualNorms() {
		fmt.Printf("Residual L2[%d] = %12.5e\n", v, norm)
	}
	if implicit {
		nr, nc := J.Dims()
		csr := J.ToCSR()
		fmt.Printf("Jacobian %dx%d, %d blocks, %d non zeros, max entry %10.3e\n",
			nr, nc, J.NumBlocks(), csr.NNZ(), J.MaxAbs())
	}
	return
}

func init() {
	rootCmd.AddCommand(assembleCmd)
	assembleCmd.Flags().IntP("repeat", "n", 1, "number of assembly passes to time")
	assembleCmd.Flags().String("profile", "", "write a cpu or mem profile to the current directory")
}

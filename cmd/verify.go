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

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the assembled Jacobian against complex step differentiation",
	Long: `
Perturbs every degree of freedom of the initial solution by a complex step of 1e-30 and compares
the resulting residual derivatives with the analytic block Jacobian. Use InitType: perturbed to
verify away from the exact solution.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		tol, _ := cmd.Flags().GetFloat64("tolerance")
		ip, r, err := readParameters()
		if err != nil {
			return
		}
		ip.Print()
		pb, err := newProblem(ip, r)
		if err != nil {
			return
		}
		rep := verification.CheckJacobian(pb.asm, tol)
		fmt.Println(rep)
		if !rep.Passed() {
			err = fmt.Errorf("jacobian differs from complex step by %.3e", rep.MaxDiff)
		}
		return
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().Float64P("tolerance", "t", 1.e-12, "relative tolerance")
}

package cmd

import (
	"os"

	"github.com/manifoldco/promptui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rustbisect/bisectd/internal/toolchain"
)

var cleanupAgree bool
var cleanupMax int

var cleanupCmd = &cobra.Command{
	Use:     "clean",
	Aliases: []string{"prune", "cleanup"},
	Short:   "Remove old toolchains installed by previous bisections",
	Long: `This command removes old rustc toolchains installed by previous bisections.

Since the service runs cargo-bisect-rustc with --preserve, every bisected range leaves its
nightly toolchains installed. This command keeps the newest bisector toolchains up to the
configured maximum and removes the rest through rustup. Toolchains not installed by
cargo-bisect-rustc are never touched.`,
	Run: func(cmd *cobra.Command, args []string) {
		installed, err := toolchain.List()
		if err != nil {
			logrus.Fatalf("Couldn't list installed toolchains - %v", err)
		}

		forRemoval := toolchain.FilterForRemoval(installed, cleanupMax)
		if len(forRemoval) == 0 {
			logrus.Info("No toolchains to remove. Exiting...")
			return
		}

		logrus.Infof("About to delete %d toolchains.", len(forRemoval))

		prompt := promptui.Prompt{
			Label:     "Proceed",
			IsConfirm: true,
		}

		if !cleanupAgree {
			_, err := prompt.Run()
			if err != nil {
				logrus.Info("Exiting...")
				os.Exit(0)
			}
		}

		for _, t := range forRemoval {
			logrus.Infof("Removing toolchain %s", t)
		}
		if err := toolchain.Remove(forRemoval); err != nil {
			logrus.Fatalf("Failed to remove toolchains - %v", err)
		}

		logrus.Info("Done cleaning up.")
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)

	cleanupCmd.Flags().BoolVarP(&cleanupAgree, "assume-yes", "y", false, `Bypass "Are you sure?" message.`)
	cleanupCmd.Flags().IntVarP(&cleanupMax, "max", "m", toolchain.DefaultMaxToolchains, "The maximum amount of bisector toolchains to keep installed")
}

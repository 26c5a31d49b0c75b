package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/plumeapp/plume-go/support/sdk"
)

// build flags
var version string
var buildDate string
var gitHash string

const rootShort = "Plume is the command-line companion and dev tooling for the Plume journaling backend."
const rootLong = `Plume is the command-line companion and dev tooling for the Plume journaling backend (https://plumeapp.io).

It speaks the same API as the mobile apps: use it to inspect your journal,
poke the backend with raw requests, or run a local stand-in server while
developing against the API.`
const plumeExamples = entriesExamples + "\n  plume api --method GET --path /v1/profile --conf ./plume.toml"

// rootAPIURL overrides the backend base URL for all commands
var rootAPIURL *string

// RootCmd is the main command for this repo
var RootCmd = &cobra.Command{
	Use:     "plume",
	Short:   rootShort,
	Long:    rootLong,
	Example: plumeExamples,
	Run: func(ccmd *cobra.Command, args []string) {
		e := ccmd.Help()
		if e != nil {
			log.Fatal(e)
		}

		fmt.Println("version:", version)
		fmt.Println("build date:", buildDate)
		fmt.Println("git hash:", gitHash)
	},
}

func checkInitRootFlags() {
	if *rootAPIURL != "" {
		e := sdk.SetBaseURL(*rootAPIURL)
		if e != nil {
			log.Fatalf("unable to set backend URL to '%s': %s", *rootAPIURL, e)
		}
	}
}

func init() {
	rootAPIURL = RootCmd.PersistentFlags().String("api-url", "", "override the Plume backend base URL")

	RootCmd.AddCommand(versionCmd)
	RootCmd.AddCommand(apiCmd)
	RootCmd.AddCommand(entriesCmd)
	RootCmd.AddCommand(devserverCmd)
}

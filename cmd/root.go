////////////////////////////////////////////////////////////////////////////////
// Copyright © 2023 Tally Team                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file                                                               //
////////////////////////////////////////////////////////////////////////////////

// Package cmd initializes the CLI and config parsers as well as the logger.
package cmd

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"
	"gitlab.com/elixxir/ekv"

	"gitlab.com/tallyteam/tally/gateway/resthttp"
	"gitlab.com/tallyteam/tally/model"
	"gitlab.com/tallyteam/tally/replica"
	"gitlab.com/tallyteam/tally/stats"
	"gitlab.com/tallyteam/tally/storage"
	"gitlab.com/tallyteam/tally/storage/versioned"
	"gitlab.com/tallyteam/tally/tracker"
)

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// rootCmd represents the base command when called without any subcommands.
// It connects to the backing store, prints the current leaderboards, and
// follows the change stream until interrupted.
var rootCmd = &cobra.Command{
	Use:   "tally",
	Short: "Runs a shared activity tracker against a REST backing store",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		initLog(viper.GetUint("logLevel"), viper.GetString("log"))

		m := initManager()
		if err := m.Start(); err != nil {
			jww.FATAL.Panicf("Failed to start the tracker: %+v", err)
		}
		defer m.Stop()

		if user := viper.GetString("user"); user != "" {
			if err := m.SwitchUser(model.RemoteID(user)); err != nil {
				jww.FATAL.Panicf("Failed to select user %q: %+v", user, err)
			}
		}

		printLeaderboards(m.Store().Snapshot())
		unsubscribe := m.Store().Subscribe(func(snap model.Snapshot) {
			printLeaderboards(snap)
		})
		defer unsubscribe()

		// Follow the store until interrupted.
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		jww.INFO.Printf("Shutting down")
	},
}

// initManager opens the session store and wires the tracker to the REST
// gateway.
func initManager() *tracker.Manager {
	var store ekv.KeyValue
	sessionDir := viper.GetString("session")
	if sessionDir == "" {
		store = ekv.MakeMemstore()
	} else {
		var err error
		store, err = ekv.NewFilestore(
			sessionDir, viper.GetString("password"))
		if err != nil {
			jww.FATAL.Panicf(
				"Failed to open session at %s: %+v", sessionDir, err)
		}
	}
	kv := versioned.NewKV(store)

	gw := resthttp.New(resthttp.Options{
		BaseURL: viper.GetString("server"),
	})

	return tracker.NewManager(replica.New(storage.New(kv)), gw, kv)
}

func printLeaderboards(snap model.Snapshot) {
	for _, ch := range snap.Challenges {
		fmt.Printf("%s\n", ch.Name)
		for _, entry := range stats.Leaderboard(snap, ch.ID) {
			fmt.Printf("  %4d  %s\n", entry.Score, entry.User.Name)
		}
	}
}

func initLog(threshold uint, logPath string) {
	if logPath != "-" && logPath != "" {
		// Disable stdout output
		jww.SetStdoutOutput(ioutil.Discard)
		// Use log file
		logOutput, err := os.OpenFile(logPath,
			os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			panic(err.Error())
		}
		jww.SetLogOutput(logOutput)
	}

	if threshold > 1 {
		jww.INFO.Printf("log level set to: TRACE")
		jww.SetStdoutThreshold(jww.LevelTrace)
		jww.SetLogThreshold(jww.LevelTrace)
		jww.SetFlags(log.LstdFlags | log.Lmicroseconds)
	} else if threshold == 1 {
		jww.INFO.Printf("log level set to: DEBUG")
		jww.SetStdoutThreshold(jww.LevelDebug)
		jww.SetLogThreshold(jww.LevelDebug)
		jww.SetFlags(log.LstdFlags | log.Lmicroseconds)
	} else {
		jww.INFO.Printf("log level set to: INFO")
		jww.SetStdoutThreshold(jww.LevelInfo)
		jww.SetLogThreshold(jww.LevelInfo)
	}
}

// init is the initialization function for Cobra which defines commands
// and flags.
func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().UintP("logLevel", "v", 0,
		"Verbose mode for debugging")
	viper.BindPFlag("logLevel", rootCmd.PersistentFlags().Lookup("logLevel"))

	rootCmd.PersistentFlags().StringP("log", "l", "-",
		"Path to the log output path (- is stdout)")
	viper.BindPFlag("log", rootCmd.PersistentFlags().Lookup("log"))

	rootCmd.PersistentFlags().StringP("session", "s", "",
		"Sets the initial storage directory for the session "+
			"(in memory when empty)")
	viper.BindPFlag("session", rootCmd.PersistentFlags().Lookup("session"))

	rootCmd.PersistentFlags().StringP("password", "p", "",
		"Password to the session file")
	viper.BindPFlag("password", rootCmd.PersistentFlags().Lookup("password"))

	rootCmd.PersistentFlags().StringP("server", "e",
		"http://localhost:8080/api",
		"Base URL of the backing store's REST API")
	viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))

	rootCmd.PersistentFlags().StringP("user", "u", "",
		"ID of the acting user")
	viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))
}

func initConfig() {}

////////////////////////////////////////////////////////////////////////////////
// Copyright © 2023 Tally Team                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file                                                               //
////////////////////////////////////////////////////////////////////////////////

package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"

	"gitlab.com/tallyteam/tally/model"
)

// logCmd logs one event for the acting user and exits. It is the scripting
// entry point: `tally log --user u1 --action a4`.
var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Logs a completed action for the acting user",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		initLog(viper.GetUint("logLevel"), viper.GetString("log"))

		m := initManager()
		ctx, cancel := context.WithTimeout(
			context.Background(), 30*time.Second)
		defer cancel()

		if err := m.Refresh(ctx); err != nil {
			jww.FATAL.Panicf("Failed to fetch the board: %+v", err)
		}
		user := viper.GetString("user")
		if err := m.SwitchUser(model.RemoteID(user)); err != nil {
			jww.FATAL.Panicf("Failed to select user %q: %+v", user, err)
		}

		ev, err := m.AddEvent(ctx, model.RemoteID(viper.GetString("action")))
		if err != nil {
			jww.FATAL.Panicf("Failed to log the action: %+v", err)
		}
		jww.INFO.Printf("Logged event %s", ev.ID)
	},
}

func init() {
	logCmd.Flags().StringP("action", "a", "",
		"ID of the action to log")
	viper.BindPFlag("action", logCmd.Flags().Lookup("action"))

	rootCmd.AddCommand(logCmd)
}

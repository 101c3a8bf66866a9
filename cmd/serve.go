package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"golang.org/x/sync/errgroup"

	"github.com/rustbisect/bisectd/internal/server"
	"github.com/rustbisect/bisectd/internal/store"
	"github.com/rustbisect/bisectd/pkg/bisect"
)

var servePort int
var serveDB string
var serveConfig string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the bisection web service",
	Long: `Start the bisection web service.

The service accepts code snippets via POST /bisect, runs cargo-bisect-rustc against them one
at a time and records the results in a sqlite database, which can be queried via GET /bisect
and GET /bisect/{id}. The database file defaults to the SQLITE_DB environment variable.

An optional runner config yaml can override the tool binary, its timeout, the commit access
method and the size of the diagnostic excerpt kept for failed searches.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		log := logrus.New()
		log.SetFormatter(&prefixed.TextFormatter{
			FullTimestamp: true,
		})

		// Set logger verbosity
		if verbosity == 0 {
			log.SetLevel(logrus.InfoLevel)
		} else if verbosity == 1 {
			log.SetLevel(logrus.DebugLevel)
		} else {
			log.SetLevel(logrus.TraceLevel)
		}

		var runner *bisect.CargoRunner
		if serveConfig != "" {
			configFile, err := os.Open(serveConfig)
			if err != nil {
				logrus.Fatalf("Failed to open runner config - %v", err)
			}
			runner, err = bisect.GetRunnerFromConfig(configFile)
			configFile.Close()
			if err != nil {
				logrus.Fatalf("Failed to read runner config from yaml - %v", err)
			}
		} else {
			var err error
			runner, err = bisect.NewCargoRunner()
			if err != nil {
				logrus.Fatalf("Failed to create runner - %v", err)
			}
		}
		runner.Log = log

		st, err := store.NewSQLite(serveDB)
		if err != nil {
			logrus.Fatalf("Failed to open store - %v", err)
		}
		defer st.Close()
		log.Info("Finished db setup")

		submitter := bisect.NewSubmitter(log)
		worker := bisect.NewWorker(st, runner, log)

		var group errgroup.Group
		group.Go(func() error {
			worker.Run(submitter.Jobs())
			return nil
		})
		group.Go(func() error {
			log.Infof("Starting up server on port %d", servePort)
			return server.New(st, submitter, log).Run(servePort)
		})

		if err := group.Wait(); err != nil {
			logrus.Fatalf("Failed to run server - %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 4000, "The port on which to serve the API")

	defaultDB := os.Getenv("SQLITE_DB")
	if defaultDB == "" {
		defaultDB = "bisect.sqlite"
	}
	serveCmd.Flags().StringVar(&serveDB, "db", defaultDB, "Path to the sqlite database file")

	serveCmd.Flags().StringVar(&serveConfig, "config", "", "Path to a runner config yaml")
}

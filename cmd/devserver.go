package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/plumeapp/plume-go/devserver"
	"github.com/plumeapp/plume-go/support/logger"
	"github.com/plumeapp/plume-go/support/networking"
	"github.com/plumeapp/plume-go/support/reporting"
)

const devserverExamples = `  plume devserver --port 8641
  plume devserver --port 8641 --email me@plumeapp.io --password hunter2 --monitoring-port 8991`

var devserverCmd = &cobra.Command{
	Use:     "devserver",
	Short:   "Runs a local in-memory stand-in for the Plume backend",
	Example: devserverExamples,
}

func init() {
	port := devserverCmd.Flags().Uint16P("port", "p", 8641, "port to listen on")
	email := devserverCmd.Flags().String("email", "dev@plumeapp.io", "email of the single dev user")
	password := devserverCmd.Flags().String("password", "devpassword", "password of the single dev user")
	jwtSecret := devserverCmd.Flags().String("jwt-secret", "plume-dev-secret", "secret used to sign session tokens")
	monitoringPort := devserverCmd.Flags().Uint16("monitoring-port", 0, "when non-zero, serve the /status monitoring endpoint on this port")
	devserverCmd.Flags().SortFlags = false

	devserverCmd.Run = func(ccmd *cobra.Command, args []string) {
		l := logger.MakeBasicLogger()

		s, e := devserver.MakeAPIServer(version, *email, *password, *jwtSecret, l)
		if e != nil {
			logger.Fatal(l, fmt.Errorf("could not make the dev server: %s", e))
		}

		if *monitoringPort != 0 {
			go func() {
				e := startMonitoringServer(l, *monitoringPort)
				if e != nil {
					l.Errorf("unable to start the monitoring server or problem encountered while running server: %s\n", e)
				}
			}()
		}

		e = s.Start(*port)
		if e != nil {
			logger.Fatal(l, fmt.Errorf("problem encountered while running the dev server: %s", e))
		}
	}
}

func startMonitoringServer(l logger.Logger, port uint16) error {
	reporter := reporting.MakeReporter(version, runtime.GOOS, l)
	statusEndpoint, e := reporting.MakeStatusEndpoint("/status", reporter, networking.NoAuth)
	if e != nil {
		return fmt.Errorf("unable to make /status endpoint: %s", e)
	}

	server, e := networking.MakeServer([]networking.Endpoint{statusEndpoint})
	if e != nil {
		return fmt.Errorf("unable to initialize the monitoring server: %s", e)
	}

	l.Infof("starting monitoring server on port %d\n", port)
	return server.StartServer(port, "", "")
}

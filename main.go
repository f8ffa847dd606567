package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/anicoll/upmon/cmd"
)

func main() {
	app := &cli.App{
		Name:   "upmon",
		Usage:  "monitor UPower devices over DBus for property changes",
		Action: cmd.MonitorCommand,
		// Property lists are comma-delimited; keep slice flag values whole.
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "device object path followed by a comma-delimited list of properties to monitor; repeat the flag so values form (path, properties) pairs",
			},
			&cli.BoolFlag{
				Name:    "list-properties",
				Aliases: []string{"l"},
				Usage:   "print the list of properties that upmon can monitor and exit",
			},
			&cli.StringFlag{
				Name:    "output-file",
				Aliases: []string{"o"},
				EnvVars: []string{"UPMON_OUTPUT_FILE"},
				Usage:   "path to file to write output to; if not provided, output is written to standard output",
			},
			&cli.StringFlag{
				Name:    "separator",
				Aliases: []string{"s"},
				Value:   "=",
				Usage:   "string used to separate each changed property from its new value in the output",
			},
			&cli.StringFlag{
				Name:    "delimiter",
				Aliases: []string{"d"},
				Value:   " ",
				Usage:   "string used to delimit each changed property-value pair in the output",
			},
			&cli.BoolFlag{
				Name:    "rules",
				Aliases: []string{"r"},
				Usage:   "print the DBus match rules generated for the given device paths and exit",
			},
			&cli.BoolFlag{
				Name:    "timestamp",
				Aliases: []string{"t"},
				Usage:   "include an ISO 8601-formatted timestamp in the output",
			},
			&cli.StringFlag{
				Name:    "log-level",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "INFO",
			},
			&cli.StringFlag{
				Name:  "mqtt-host",
				Usage: "MQTT broker to mirror change records to; MQTT output is disabled when unset",
			},
			&cli.StringFlag{
				Name: "mqtt-user",
			},
			&cli.StringFlag{
				Name: "mqtt-pass",
			},
			&cli.StringFlag{
				Name: "mqtt-topic-prefix",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

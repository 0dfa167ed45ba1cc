package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hacklet/hacklet/internal/config"
	"github.com/hacklet/hacklet/internal/dongle"
	"github.com/hacklet/hacklet/internal/serialport"
)

var (
	debugLevel  int
	portPath    string
	networkFlag string
	socketFlag  int
)

func init() {
	rootCmd.PersistentFlags().CountVarP(&debugLevel, "debug", "d", "Increase log verbosity (-d protocol, -dd raw bytes)")
	rootCmd.PersistentFlags().StringVar(&portPath, "port", "", "Serial device path of the dongle (default: discover by USB id)")

	rootCmd.AddCommand(onCmd)
	rootCmd.AddCommand(offCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(commissionCmd)
}

// applyConfigDefaults fills in flags the user did not pass from the
// persisted settings file. A broken settings file only costs the
// defaults; the error comes back so it can be logged once the logger
// is up.
func applyConfigDefaults(cmd *cobra.Command) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}
	if portPath == "" {
		portPath = settings.Port
	}
	if networkFlag == "" {
		networkFlag = settings.Network
	}
	if !cmd.Flags().Changed("debug") && debugLevel == 0 {
		debugLevel = settings.Verbosity
	}
	return nil
}

func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&networkFlag, "network", "n", "", "Network id of the outlet, e.g. 0x215a")
	cmd.Flags().IntVarP(&socketFlag, "socket", "s", 0, "Socket on the outlet (0 top, 1 bottom)")
}

func parseNetwork() (uint16, error) {
	if networkFlag == "" {
		return 0, fmt.Errorf("a network id is required (--network 0x215a)")
	}
	n, err := strconv.ParseUint(networkFlag, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid network id %q: %w", networkFlag, err)
	}
	return uint16(n), nil
}

func parseSocket() (int, error) {
	if socketFlag != 0 && socketFlag != 1 {
		return 0, fmt.Errorf("invalid socket %d: must be 0 or 1", socketFlag)
	}
	return socketFlag, nil
}

// openDongle opens the serial port and runs the boot handshake.
func openDongle() (*dongle.Dongle, error) {
	port, err := serialport.OpenPath(portPath)
	if err != nil {
		return nil, err
	}
	return dongle.Open(port)
}

var onCmd = &cobra.Command{
	Use:   "on",
	Short: "Switch a socket on",
	Example: `  # Switch the top socket of network 0x215a on
  hacklet on --network 0x215a --socket 0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSwitch(dongle.AlwaysOn)
	},
}

var offCmd = &cobra.Command{
	Use:   "off",
	Short: "Switch a socket off",
	Example: `  # Switch the bottom socket of network 0x215a off
  hacklet off --network 0x215a --socket 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSwitch(dongle.AlwaysOff)
	},
}

func init() {
	addTargetFlags(onCmd)
	addTargetFlags(offCmd)
	addTargetFlags(readCmd)
}

func runSwitch(state dongle.SwitchState) error {
	network, err := parseNetwork()
	if err != nil {
		return err
	}
	socket, err := parseSocket()
	if err != nil {
		return err
	}

	d, err := openDongle()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.SelectNetwork(network); err != nil {
		return err
	}
	if err := d.Switch(network, uint8(socket), state); err != nil {
		return err
	}

	fmt.Printf("Socket %d on network 0x%04x switched %s.\n", socket, network, state)
	return nil
}

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read accumulated power samples from a socket",
	Long: `Read the power samples an outlet has accumulated since they were
last collected. Each sample is one minute of energy usage.`,
	Example: `  # Read samples from the top socket of network 0x215a
  hacklet read --network 0x215a --socket 0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		network, err := parseNetwork()
		if err != nil {
			return err
		}
		socket, err := parseSocket()
		if err != nil {
			return err
		}

		d, err := openDongle()
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.SelectNetwork(network); err != nil {
			return err
		}
		samples, err := d.RequestSamples(network, uint16(socket))
		if err != nil {
			return err
		}

		if len(samples) == 0 {
			fmt.Println("No samples available.")
			return nil
		}
		for i, sample := range samples {
			fmt.Printf("%3d: %d\n", i, sample)
		}
		return nil
	},
}

var commissionCmd = &cobra.Command{
	Use:   "commission",
	Short: "Commission a new outlet onto the dongle's network",
	Long: `Listen for a factory-reset outlet announcing itself and adopt it.

The dongle's network is unlocked for up to 30 seconds; press the pairing
button on the outlet during that window. When the outlet broadcasts, its
clock is synchronized and the network is locked again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDongle()
		if err != nil {
			return err
		}
		defer d.Close()

		fmt.Println("Listening for a new outlet; press its pairing button now...")

		status, err := d.Commission()
		if err != nil {
			return err
		}
		switch status.State {
		case dongle.Commissioned:
			fmt.Printf("Found device 0x%016x on network 0x%04x\n", status.ID.Device, status.ID.Network)
		default:
			fmt.Println("No device found.")
		}
		return nil
	},
}

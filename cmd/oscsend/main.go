// Command oscsend fires test messages at an osctrigger instance.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/Lobaro/slip"
	gosc "github.com/hypebeast/go-osc/osc"

	"github.com/showcontroller/osctrigger/osc"
)

type sendOptions struct {
	host     string
	port     int
	path     string
	isFloat  bool
	intVal   int
	floatVal float64
	bundle   bool
	count    int
	interval time.Duration
	tcp      bool
	lib      bool
}

func main() {
	o, err := parseArgs(flag.NewFlagSet(os.Args[0], flag.ExitOnError), os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if err := run(o); err != nil {
		log.Fatalf("Send failed: %v", err)
	}
}

func parseArgs(fs *flag.FlagSet, args []string) (sendOptions, error) {
	var o sendOptions
	fs.StringVar(&o.host, "addr", "127.0.0.1", "Destination IPv4 address")
	fs.IntVar(&o.port, "port", 55525, "Destination port")
	fs.StringVar(&o.path, "path", "/flair/runstate", "OSC address")
	fs.IntVar(&o.intVal, "int", 9, "Send an int32 argument")
	fs.Float64Var(&o.floatVal, "float", 0, "Send a float32 argument instead of an int")
	fs.BoolVar(&o.bundle, "bundle", false, "Wrap the message in a bundle with decoy siblings")
	fs.IntVar(&o.count, "count", 1, "Number of packets to send")
	fs.DurationVar(&o.interval, "interval", 100*time.Millisecond, "Delay between packets")
	fs.BoolVar(&o.tcp, "tcp", false, "Send SLIP-framed packets over TCP")
	fs.BoolVar(&o.lib, "lib", false, "Encode and send with the go-osc client (UDP only)")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "float" {
			o.isFloat = true
		}
	})

	if o.count < 1 {
		return o, fmt.Errorf("count must be at least 1")
	}
	if o.lib && (o.tcp || o.bundle) {
		return o, fmt.Errorf("-lib sends plain UDP messages only")
	}
	return o, nil
}

func (o sendOptions) message() osc.Message {
	if o.isFloat {
		return osc.NewFloat(o.path, float32(o.floatVal))
	}
	return osc.NewInt(o.path, int32(o.intVal))
}

// packet builds the payload. A bundle carries the message between two
// decoys that must never fire.
func (o sendOptions) packet() ([]byte, error) {
	msg := o.message()
	if !o.bundle {
		return msg.MarshalBinary()
	}
	b := osc.NewBundle(time.Time{})
	b.Append(osc.NewInt(o.path+"/decoy", msg.Int()))
	b.Append(msg)
	b.Append(osc.NewFloat("/decoy"+o.path, msg.Float()))
	return b.MarshalBinary()
}

func run(o sendOptions) error {
	if o.lib {
		return sendWithLibrary(o)
	}

	data, err := o.packet()
	if err != nil {
		return err
	}

	dest := net.JoinHostPort(o.host, strconv.Itoa(o.port))
	network := "udp4"
	if o.tcp {
		network = "tcp4"
	}
	conn, err := net.Dial(network, dest)
	if err != nil {
		return err
	}
	defer conn.Close()

	var write func([]byte) error
	if o.tcp {
		write = slipWriter(conn)
	} else {
		write = func(p []byte) error {
			_, err := conn.Write(p)
			return err
		}
	}

	for i := 0; i < o.count; i++ {
		if i > 0 {
			time.Sleep(o.interval)
		}
		if err := write(data); err != nil {
			return err
		}
		log.Printf("Sent %s to %s/%s (%d bytes)", o.message(), network, dest, len(data))
	}
	return nil
}

func slipWriter(w io.Writer) func([]byte) error {
	sw := slip.NewWriter(w)
	return sw.WritePacket
}

func sendWithLibrary(o sendOptions) error {
	client := gosc.NewClient(o.host, o.port)
	for i := 0; i < o.count; i++ {
		if i > 0 {
			time.Sleep(o.interval)
		}
		msg := gosc.NewMessage(o.path)
		if o.isFloat {
			msg.Append(float32(o.floatVal))
		} else {
			msg.Append(int32(o.intVal))
		}
		if err := client.Send(msg); err != nil {
			return err
		}
		log.Printf("Sent %s via go-osc", msg)
	}
	return nil
}

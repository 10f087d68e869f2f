// Command certgen writes a development CA and a server certificate signed
// by it, for running the content API over HTTPS:
//
//	go run ./tools/certgen -out certs -hosts localhost,127.0.0.1
//
// An existing CA is reused when -ca-cert and -ca-key are given.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/atinyakov/travelsite/internal/certgen"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "certgen:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("certgen", flag.ContinueOnError)
	fs.SetOutput(out)
	dir := fs.String("out", "certs", "output directory")
	hosts := fs.String("hosts", "localhost,127.0.0.1", "comma-separated DNS names and IPs of the server")
	caCert := fs.String("ca-cert", "", "existing CA certificate (PEM)")
	caKey := fs.String("ca-key", "", "existing CA key (PEM)")
	validity := fs.Duration("validity", 365*24*time.Hour, "server certificate validity")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		ca  *certgen.Issuer
		err error
	)
	if *caCert != "" || *caKey != "" {
		ca, err = certgen.LoadCACredentials(*caCert, *caKey)
		if err != nil {
			return err
		}
	} else {
		ca, err = certgen.GenerateCA("Travel Site CA", 10*365*24*time.Hour)
		if err != nil {
			return err
		}
		if err := certgen.WriteIssuer(*dir, ca); err != nil {
			return err
		}
	}

	var names []string
	for _, h := range strings.Split(*hosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			names = append(names, h)
		}
	}
	certPEM, keyPEM, err := certgen.GenerateServerCertificate(names, ca, *validity)
	if err != nil {
		return err
	}
	if err := certgen.WritePair(*dir, "server", certPEM, keyPEM); err != nil {
		return err
	}

	fmt.Fprintf(out, "certificates for %s written to %s\n", strings.Join(names, ", "), *dir)
	return nil
}

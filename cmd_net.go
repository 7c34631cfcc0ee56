package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveOpen bool
var sendAddr string
var streamURL string
var remoteURL string
var remoteSave string
var remoteEncodeLoad string
var remoteTableFile string
var remoteLoad string

func openBrowser(url string) {
	switch runtime.GOOS {
	case "linux":
		exec.Command("xdg-open", url).Start()
	case "windows":
		exec.Command(
			"rundll32",
			"url.dll,FileProtocolHandler",
			url,
		).Start()
	case "darwin":
		exec.Command("open", url).Start()
	}
}

func serviceURL(config *Config, override string) string {
	if override != "" {
		return override
	}
	return "http://" + config.ListenAddress
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the codec over HTTP, websockets and UDP packets",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, closeLog, err := setup()
		if err != nil {
			return err
		}
		defer closeLog()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, err := OpenTableStore(ctx, config)
		if err != nil {
			return err
		}
		defer store.Close()

		events := NewBroadcaster()
		server := NewServer(config, NewCodec(store, events))

		gin.SetMode(gin.ReleaseMode)
		r, err := server.Engine()
		if err != nil {
			return err
		}

		packets, err := NewPacketServer(config.PacketAddress, events)
		if err != nil {
			return fmt.Errorf("cannot listen for packets: %w", err)
		}
		go func() {
			err := packets.Start(ctx)
			if err != nil {
				log.Error().Err(err).Msg("packet server failed")
			}
		}()
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case f := <-packets.Frames():
					log.Info().Str("from", f.From).Uint16("frame", f.ID).Str("text", truncate(f.Text, 80)).Msg("packet frame")
				}
			}
		}()

		l, err := net.Listen("tcp", config.ListenAddress)
		if err != nil {
			return err
		}

		h := &http.Server{Handler: r}
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			h.Shutdown(shutdownCtx)
		}()

		url := "http://" + l.Addr().String() + "/"
		log.Info().Str("packets", packets.Addr().String()).Msgf("Starting up a server on %s", url)
		if serveOpen {
			go openBrowser(url)
		}

		err = h.Serve(l)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	},
}

var sendCmd = &cobra.Command{
	Use:   "send [text]",
	Short: "Send text to a packet server as one coded frame",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, closeLog, err := setup()
		if err != nil {
			return err
		}
		defer closeLog()

		addr := config.PacketAddress
		if sendAddr != "" {
			addr = sendAddr
		}

		client, err := NewPacketClient(addr, config.PacketSize)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		frame, err := client.Send(ctx, textArg(config, args))
		if err != nil {
			return err
		}

		fmt.Printf("frame %d: %d symbols, %d bits, %d bytes\n", frame.ID, frame.Symbols, frame.Bits, len(frame.Data))
		return nil
	},
}

var streamCmd = &cobra.Command{
	Use:   "stream [text...]",
	Short: "Encode and decode each argument over a websocket",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, closeLog, err := setup()
		if err != nil {
			return err
		}
		defer closeLog()

		if len(args) == 0 {
			args = []string{config.SampleText}
		}

		client, err := DialStream(serviceURL(config, streamURL))
		if err != nil {
			return err
		}
		defer client.Close()

		for _, text := range args {
			enc, err := client.Encode(text)
			if err != nil {
				return err
			}

			dec, err := client.Decode(enc.Bits, nil)
			if err != nil {
				return err
			}

			fmt.Printf("%q -> %s -> %q\n", text, enc.Bits, dec.Text)
		}

		return nil
	},
}

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Use the JSON API of a running service",
}

var remoteEncodeCmd = &cobra.Command{
	Use:   "encode [text]",
	Short: "Encode text on the service",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, closeLog, err := setup()
		if err != nil {
			return err
		}
		defer closeLog()

		client := NewAPIClient(serviceURL(config, remoteURL))
		resp, err := client.Encode(cmd.Context(), EncodeRequest{
			Text:      textArg(config, args),
			TableName: remoteEncodeLoad,
		})
		if err != nil {
			return err
		}

		fmt.Println(resp.Bits)

		if remoteSave != "" {
			if err := client.SaveTable(cmd.Context(), remoteSave, resp.Table); err != nil {
				return err
			}
			log.Info().Str("name", remoteSave).Msg("table saved on the service")
		}

		return nil
	},
}

var remoteDecodeCmd = &cobra.Command{
	Use:   "decode BITS",
	Args:  cobra.ExactArgs(1),
	Short: "Decode bits on the service",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, closeLog, err := setup()
		if err != nil {
			return err
		}
		defer closeLog()

		req := DecodeRequest{Bits: args[0], TableName: remoteLoad}
		if remoteTableFile != "" {
			req.Table, err = readTableFile(remoteTableFile)
			if err != nil {
				return err
			}
		} else if remoteLoad == "" {
			return errors.New("need --table FILE or --load NAME")
		}

		client := NewAPIClient(serviceURL(config, remoteURL))
		text, err := client.Decode(cmd.Context(), req)
		if err != nil {
			return err
		}

		fmt.Println(text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, sendCmd, streamCmd, remoteCmd)
	remoteCmd.AddCommand(remoteEncodeCmd, remoteDecodeCmd)

	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "open the page in a browser")
	sendCmd.Flags().StringVarP(&sendAddr, "addr", "a", "", "packet server address (default: packet_address from config)")
	streamCmd.Flags().StringVarP(&streamURL, "url", "u", "", "service URL (default: http://listen_address)")

	remoteCmd.PersistentFlags().StringVarP(&remoteURL, "url", "u", "", "service URL (default: http://listen_address)")
	remoteEncodeCmd.Flags().StringVarP(&remoteSave, "save", "s", "", "keep the code table on the service under this name")
	remoteEncodeCmd.Flags().StringVarP(&remoteEncodeLoad, "load", "l", "", "encode with a table kept on the service")
	remoteDecodeCmd.Flags().StringVarP(&remoteTableFile, "table", "t", "", "read the code table from this JSON file")
	remoteDecodeCmd.Flags().StringVarP(&remoteLoad, "load", "l", "", "use a table kept on the service")
}

// vim: ai:ts=8:sw=8:noet:syntax=go

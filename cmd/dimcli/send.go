package main

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dimchat/dim-go/clock"
	"github.com/dimchat/dim-go/config"
	"github.com/dimchat/dim-go/crypto"
	"github.com/dimchat/dim-go/dedup"
	"github.com/dimchat/dim-go/dkd"
	"github.com/dimchat/dim-go/fsm"
	"github.com/dimchat/dim-go/gate"
	"github.com/dimchat/dim-go/log"
	"github.com/dimchat/dim-go/messenger"
	"github.com/dimchat/dim-go/mkm"
	"github.com/dimchat/dim-go/msg"
	"github.com/dimchat/dim-go/queue"
	"github.com/dimchat/dim-go/stores"
	"github.com/dimchat/dim-go/transport"
	"github.com/spf13/cobra"
)

var (
	sendConfigPath string
	sendReceiver   string
	sendText       string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a text message to a receiver through the configured station",
	RunE:  runSend,
}

func init() {
	sendCmd.Flags().StringVar(&sendConfigPath, "config", "dimcli.yaml", "path to the YAML config file")
	sendCmd.Flags().StringVar(&sendReceiver, "to", "", "receiver ID, e.g. bob@4WDfe3zZ...")
	sendCmd.Flags().StringVar(&sendText, "text", "", "message text")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(sendConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log.SetLevel(cfg.LogLevel)

	receiver, ok := mkm.ParseID(sendReceiver)
	if !ok {
		return fmt.Errorf("invalid --to receiver ID %q", sendReceiver)
	}
	if len(cfg.Stations) == 0 {
		return fmt.Errorf("config has no stations to dial")
	}
	station := cfg.Stations[0]

	rawKey, err := hex.DecodeString(cfg.PrivateKey)
	if err != nil {
		return fmt.Errorf("decode private_key: %w", err)
	}
	priv := crypto.NewECCPrivateKey(rawKey)
	meta, err := mkm.GenerateMeta(mkm.MetaMKM, priv, cfg.Seed)
	if err != nil {
		return fmt.Errorf("regenerate meta: %w", err)
	}
	addr, err := meta.GenerateAddress(mkm.User)
	if err != nil {
		return fmt.Errorf("derive address: %w", err)
	}
	localUser := mkm.IDFromAddress(cfg.Seed, addr)

	archivist := stores.NewMemoryArchivist()
	if err := archivist.SaveMeta(localUser, meta); err != nil {
		return fmt.Errorf("save local meta: %w", err)
	}
	privateKeys := stores.NewMemoryPrivateKeyStore()
	privateKeys.SavePrivateKey(localUser, priv)

	keyCache := msg.NewKeyCache(crypto.AESKeyFactory{}, stores.NewMemoryKeyStore())
	packer := msg.NewPacker(keyCache, archivist, privateKeys, crypto.AESKeyFactory{})

	url := transport.ParseStationURL(station.Host, station.Port, station.Secure)
	conn, local, remote, err := transport.Dial(url, 10*time.Second)
	if err != nil {
		return fmt.Errorf("dial station %s: %w", url, err)
	}

	g := gate.NewGate(nil)
	g.Bind(local, remote, conn, false)

	session := fsm.NewSession(clock.System{})
	session.SetUserID(localUser)

	m := messenger.New(localUser, archivist, packer, session, g, local, remote, dedup.NewPool(clock.System{}), nil)

	content := dkd.NewContent(dkd.TEXT)
	content.Body["text"] = sendText

	_, reliable, err := m.Send(content, receiver, queue.PriorityNormal)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	g.Tick()
	if reliable == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "parked: receiver visa not yet known")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "sent")
	return nil
}

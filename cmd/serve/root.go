package serve

import (
	"fmt"
	"strings"

	cmdUtil "github.com/lsetdb/lset/cmd/util"
	"github.com/lsetdb/lset/rpc/common"
	"github.com/lsetdb/lset/rpc/serializer"
	"github.com/lsetdb/lset/rpc/server"
	"github.com/lsetdb/lset/rpc/transport"
	"github.com/lsetdb/lset/rpc/transport/http"
	"github.com/lsetdb/lset/rpc/transport/tcp"
	"github.com/lsetdb/lset/rpc/transport/unix"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the LSET server",
		Long:    `Start the LSET server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is LSET_<flag> (e.g. LSET_TIMEOUT=15)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	key := "timeout"
	ServeCmd.PersistentFlags().Int64(key, 5, cmdUtil.WrapString("Timeout in seconds"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the API will listen (e.g. localhost:8080, /tmp/lset.sock, ...)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	key = "storage-backend"
	ServeCmd.PersistentFlags().String(key, "memory", cmdUtil.WrapString("The host.Host backend the embedded engine runs on: memory (non-persistent) or maple (the maple db.KVDB engine)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.Transport.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	serveCmdConfig.StorageBackend = viper.GetString("storage-backend")

	return nil
}

// run starts the LSET server
func run(_ *cobra.Command, _ []string) error {
	var s serializer.IRPCSerializer
	switch viper.GetString("serializer") {
	case "json":
		s = serializer.NewJSONSerializer()
	case "gob":
		s = serializer.NewGOBSerializer()
	case "binary":
		s = serializer.NewBinarySerializer()
	default:
		return fmt.Errorf("invalid serializer %s", viper.GetString("serializer"))
	}

	var t transport.IRPCServerTransport
	switch viper.GetString("transport") {
	case "http":
		t = http.NewHttpServerTransport()
	case "tcp":
		t = tcp.NewTCPServerTransportWithOptions(64*1024, 32)
	case "unix":
		t = unix.NewUnixServerTransport(64*1024, 32)
	default:
		return fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}

	serv := server.NewRPCServer(
		*serveCmdConfig,
		t,
		s,
	)

	return serv.Serve()
}

// initConfig reads in serveCmdConfig file and ENV variables if set.
func initConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("lset")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/sirupsen/logrus"

	"EagleEye/internal/awsx"
	"EagleEye/internal/config"
	"EagleEye/internal/engine/flowlog"
	"EagleEye/internal/model"
	"EagleEye/internal/publisher"
	"EagleEye/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if flag.NArg() != 1 {
		logrus.Fatal("Usage: ee-flow [flags] <flow-log file | s3://bucket/key>")
	}
	source := flag.Arg(0)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awsx.NewConfig(ctx, cfg.AWS)
	if err != nil {
		logrus.Fatalf("Failed to configure AWS clients: %v", err)
	}

	var publishers []model.Publisher
	for _, def := range cfg.FlowLog.Publishers {
		if !def.Enabled {
			continue
		}
		switch def.Type {
		case "appsync":
			keys := awsx.NewSecretCache(ssm.NewFromConfig(awsCfg), cfg.FlowLog.APIKeyParameter)
			publishers = append(publishers, publisher.NewAppSync(cfg.FlowLog.AppSyncURL, keys))
		case "nats":
			np, err := publisher.NewNATS(def.NATS)
			if err != nil {
				logrus.Fatalf("Failed to start NATS publisher: %v", err)
			}
			defer np.Close()
			publishers = append(publishers, np)
		default:
			logrus.Fatalf("Unknown publisher type %q", def.Type)
		}
	}

	var writers []model.SummaryWriter
	if cfg.FlowLog.ClickHouse.Enabled {
		ch, err := storage.NewClickHouseWriter(cfg.FlowLog.ClickHouse)
		if err != nil {
			logrus.Fatalf("Failed to start ClickHouse writer: %v", err)
		}
		defer ch.Close()
		writers = append(writers, ch)
	}

	proc := flowlog.NewProcessor(s3.NewFromConfig(awsCfg), publishers, writers)

	var outcome flowlog.Outcome
	if bucket, key, ok := splitS3URI(source); ok {
		outcome, err = proc.ProcessObject(ctx, bucket, key)
	} else {
		outcome, err = proc.ProcessFile(ctx, source)
	}
	if err != nil {
		logrus.Fatalf("Processing failed: %v", err)
	}

	out, _ := json.MarshalIndent(outcome, "", "  ")
	fmt.Fprintln(os.Stdout, string(out))
}

// splitS3URI parses "s3://bucket/key" into its parts.
func splitS3URI(uri string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(uri, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

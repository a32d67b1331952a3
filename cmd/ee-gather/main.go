package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/sirupsen/logrus"

	"EagleEye/internal/awsx"
	"EagleEye/internal/config"
	"EagleEye/internal/discovery"
	"EagleEye/internal/export"
	"EagleEye/internal/lookup"
	"EagleEye/internal/model"
	"EagleEye/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	dryRun := flag.Bool("dry-run", false, "classify interfaces without writing to the table")
	vpcID := flag.String("vpc-id", "", "restrict discovery to one VPC")
	output := flag.String("output", "", "directory to export the discovered interfaces as JSON")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	if *vpcID != "" {
		cfg.Discovery.VpcID = *vpcID
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awsx.NewConfig(ctx, cfg.AWS)
	if err != nil {
		logrus.Fatalf("Failed to configure AWS clients: %v", err)
	}

	identity, err := sts.NewFromConfig(awsCfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		logrus.Fatalf("Failed to resolve caller identity: %v", err)
	}
	accountID := *identity.Account
	logrus.WithFields(logrus.Fields{
		"account": accountID,
		"region":  awsCfg.Region,
	}).Info("Discovery starting")

	ec2Client := ec2.NewFromConfig(awsCfg)
	resolver := lookup.NewResolver(
		resourcegroupstaggingapi.NewFromConfig(awsCfg),
		ec2Client,
		rds.NewFromConfig(awsCfg),
		awsCfg.Region,
		accountID,
	)

	var sink model.Sink
	if *dryRun {
		logrus.Info("Dry run: results stay in memory")
		sink = storage.NewMemorySink()
	} else {
		sink = storage.NewDynamoSink(dynamodb.NewFromConfig(awsCfg), cfg.Discovery.TableName)
	}

	svc := discovery.NewService(ec2Client, resolver, sink, accountID, cfg.Discovery.VpcID)
	stats, err := svc.FullSync(ctx)
	if err != nil {
		logrus.Fatalf("Discovery failed: %v", err)
	}

	if *output != "" {
		items, err := sink.Scan(ctx)
		if err != nil {
			logrus.Fatalf("Failed to read back results for export: %v", err)
		}
		dir, err := export.NewWriter().Write(items, *output, time.Now())
		if err != nil {
			logrus.Fatalf("Export failed: %v", err)
		}
		logrus.WithField("dir", dir).Info("Results exported")
	}

	out, _ := json.MarshalIndent(stats, "", "  ")
	fmt.Fprintln(os.Stdout, string(out))
}

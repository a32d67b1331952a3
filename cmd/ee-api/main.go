package main

import (
	"context"
	"flag"
	"net/http"
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

	"EagleEye/internal/api"
	"EagleEye/internal/awsx"
	"EagleEye/internal/config"
	"EagleEye/internal/discovery"
	"EagleEye/internal/lookup"
	"EagleEye/internal/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	awsCfg, err := awsx.NewConfig(ctx, cfg.AWS)
	if err != nil {
		logrus.Fatalf("Failed to configure AWS clients: %v", err)
	}

	identity, err := sts.NewFromConfig(awsCfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		logrus.Fatalf("Failed to resolve caller identity: %v", err)
	}

	dynamoClient := dynamodb.NewFromConfig(awsCfg)
	sink := storage.NewDynamoSink(dynamoClient, cfg.Discovery.TableName)
	vpcs := storage.NewDynamoVpcRegistry(dynamoClient, cfg.Discovery.VpcTableName)

	ec2Client := ec2.NewFromConfig(awsCfg)
	resolver := lookup.NewResolver(
		resourcegroupstaggingapi.NewFromConfig(awsCfg),
		ec2Client,
		rds.NewFromConfig(awsCfg),
		awsCfg.Region,
		*identity.Account,
	)
	syncer := discovery.NewService(ec2Client, resolver, sink, *identity.Account, cfg.Discovery.VpcID)

	server := &http.Server{
		Addr:    cfg.API.ListenAddr,
		Handler: api.NewHandler(sink, vpcs, syncer).Router(),
	}

	go func() {
		logrus.WithField("addr", server.Addr).Info("API server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Could not listen on %s: %v", server.Addr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("API server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}
	logrus.Info("API server exited")
}

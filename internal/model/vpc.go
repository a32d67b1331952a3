package model

import "context"

// VpcEntry is one row of the VPC list table driving the UI's VPC picker.
type VpcEntry struct {
	ID      string `json:"id" dynamodbav:"vpc_id"`
	Name    string `json:"name" dynamodbav:"name"`
	Enabled bool   `json:"enabled" dynamodbav:"enabled"`
}

// VpcRegistry lists the VPCs known to the system.
type VpcRegistry interface {
	List(ctx context.Context) ([]VpcEntry, error)
}

// Package minio streams destinations to MinIO or any S3-compatible server
// with the MinIO client, without pulling in the AWS SDK.
//
//	store, err := minio.NewStoreFromEnv(minio.Env{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	}, "bench")
package minio

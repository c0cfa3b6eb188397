// Package s3 implements blobstore.BlobStore on Amazon S3, plus a DynamoDB
// backed checkpoint store for atomically advancing the latest-snapshot
// pointer (S3 alone has no compare-and-swap).
//
// Create the checkpoint table with:
//
//	aws dynamodb create-table \
//	  --table-name bankergo-checkpoints \
//	  --attribute-definitions AttributeName=base_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=base_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
package s3

package constants

import (
	"os"
	"strconv"
)

func GetIndexDir() string {
	path := os.Getenv("INDEX_PATH")
	if path != "" {
		return path
	}
	return "./out"
}

func GetMediaDir() string {
	path := os.Getenv("MEDIA_PATH")
	if path != "" {
		return path
	}

	panic("MEDIA_PATH environment variable is not set!")
}

func GetMaxWorkers() int {
	if n, err := strconv.Atoi(os.Getenv("POLYINDEX_WORKERS")); err == nil && n > 0 {
		return n
	}
	return DefaultMaxWorkers
}

func GetDynamoEndpoint() string {
	endpoint := os.Getenv("DYNAMO_ENDPOINT")
	if endpoint != "" {
		return endpoint
	}
	return "http://localhost:8000"
}

func GetListenAddr() string {
	addr := os.Getenv("LISTEN_ADDR")
	if addr != "" {
		return addr
	}
	return ":8080"
}

const DefaultMaxWorkers = 16

// grid steps are built in integer milliseconds of a quarter note
const OffsetPrecision = 1000

const MinQuarterLength = 0.001

const MetadataTable = "polyindex-metadata"

// DynamoDB BatchGetItem limit used by db
const MaxMetadataBatch = 10

const CatalogFilename = "catalog.dat"

const PiecesFilename = "pieces.dat"

// aggregated token counts of a chain are stored as <chain>.freq
const FrequencyExt = ".freq"

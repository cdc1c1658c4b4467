package util

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// CheckPipeline fails t unless found unmarshals to expected.
func CheckPipeline(t *testing.T, expected bson.D, found bsoncore.Document) {
	var foundPipeline bson.D
	val := bson.RawValue{
		Type:  bsontype.EmbeddedDocument,
		Value: found,
	}
	err := val.Unmarshal(&foundPipeline)
	if err != nil {
		t.Fatalf("failed to unmarshal bson '%s'", err)
	}

	if !reflect.DeepEqual(expected, foundPipeline) {
		t.Fatalf("expected pipelines to be equal, but they weren't:\n%s\nand\n%s", expected, foundPipeline)
	}
}

// MarshalPipeline returns the BSON form of pipeline.
func MarshalPipeline(t *testing.T, pipeline bson.D) bsoncore.Document {
	bytes, err := bson.Marshal(&pipeline)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	return bytes
}

// CollectionStage returns the BSON form of a $collection stage.
func CollectionStage(db, collection string) bson.D {
	return bson.D{{"$collection", bson.D{
		{"db", db},
		{"collection", collection},
	}}}
}

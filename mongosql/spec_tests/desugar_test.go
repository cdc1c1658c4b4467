package spec_tests

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/10gen/candiedyaml"
	"github.com/10gen/mongosql-air/internal/air"
	"github.com/10gen/mongosql-air/mongosql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

const desugarTestsDir = "testdata"

type YamlTest struct {
	// Tests holds testing information for each test in a given YAML file.
	Tests []struct {
		Description string   `yaml:"description"`
		Passes      []string `yaml:"passes"`
		Input       bson.D   `yaml:"input"`
		Expected    bson.D   `yaml:"expected"`
		Error       string   `yaml:"error"`
		SkipReason  string   `yaml:"skip_reason"`
	} `yaml:"tests"`
}

// readYamlFile tries to marshal the given YAML file into a YamlTest struct.
func readYamlFile(file string) (*YamlTest, error) {
	yamlFile, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("error reading YAML file: '%s'", file)
	}
	var yamlTest YamlTest
	err = candiedyaml.Unmarshal(yamlFile, &yamlTest)
	if err != nil {
		return nil, fmt.Errorf("error parsing YAML file: %s\n", err)
	}
	return &yamlTest, nil
}

// normalizeBSON converts a bson.D that represents extended JSON types into
// primitive bson types and converts []interface{} into bson.A. This is
// necessary because the candiedyaml parser does not decode extended JSON values.
func normalizeBSON(doc bson.D) (bson.D, error) {
	oldDocBytes, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return nil, fmt.Errorf("error marshaling doc %v: %v", doc, err)
	}

	newDoc := bson.D{}
	err = bson.UnmarshalExtJSON(oldDocBytes, false, &newDoc)
	if err != nil {
		return nil, fmt.Errorf("error unmarshaling doc:\n\tdoc: %v\n\terr: %v", string(oldDocBytes), err)
	}

	return newDoc, nil
}

// canonicalPipeline returns the BSON form of doc with keys in the order the
// desugarer writes them.
func canonicalPipeline(doc bson.D) (bsoncore.Document, error) {
	normalized, err := normalizeBSON(doc)
	if err != nil {
		return nil, err
	}
	bytes, err := bson.Marshal(normalized)
	if err != nil {
		return nil, err
	}
	stage, err := air.ParseStage(bytes)
	if err != nil {
		return nil, err
	}
	return air.DeparseStage(stage), nil
}

func TestSpecDesugaring(t *testing.T) {
	files, err := filepath.Glob(filepath.Join(desugarTestsDir, "*.yml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		yaml, err := readYamlFile(file)
		require.NoError(t, err)

		for _, testCase := range yaml.Tests {
			testCase := testCase
			t.Run(testCase.Description, func(t *testing.T) {
				if testCase.SkipReason != "" {
					t.Skip(testCase.SkipReason)
				}

				input, err := normalizeBSON(testCase.Input)
				require.NoError(t, err)
				inputBytes, err := bson.Marshal(input)
				require.NoError(t, err)

				desugaring, err := mongosql.Desugar(mongosql.DesugarArgs{
					Pipeline: inputBytes,
					Passes:   testCase.Passes,
				})

				if testCase.Error != "" {
					if err == nil {
						t.Fatalf("expected an error containing %q", testCase.Error)
					}
					assert.Contains(t, err.Error(), testCase.Error)
					return
				}
				require.NoError(t, err)

				expected, err := canonicalPipeline(testCase.Expected)
				require.NoError(t, err)

				if !reflect.DeepEqual(expected, desugaring.Pipeline) {
					t.Fatalf("expected pipelines to be equal, but they weren't:\nexpected:%v\nactual:%v\n", expected, desugaring.Pipeline)
				}
			})
		}
	}
}

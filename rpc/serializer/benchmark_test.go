package serializer

import (
	"testing"

	"github.com/lsetdb/lset/rpc/common"
)

// benchmarkMessages returns a set of messages for targeted benchmarking
func benchmarkMessages() map[string]common.Message {
	return map[string]common.Message{
		"Empty": {
			MsgType: common.MsgTSuccess,
		},
		"SmallKeyOnly": {
			MsgType: common.MsgTLSetGet,
			TopRec:  "r",
			Bin:     "s",
			Key:     []byte(`"k"`),
		},
		"MediumKeyOnly": {
			MsgType: common.MsgTLSetGet,
			TopRec:  "rec",
			Bin:     "myset",
			Key:     []byte(`"medium-length-key-for-testing"`),
		},
		"LargeKeyOnly": {
			MsgType: common.MsgTLSetGet,
			TopRec:  "rec",
			Bin:     "myset",
			Key:     []byte(`"this-is-a-very-large-key-that-could-be-used-for-storing-data-or-as-a-document-id-in-some-cases"`),
		},
		"SmallValue": {
			MsgType: common.MsgTLSetAdd,
			TopRec:  "rec",
			Bin:     "myset",
			Value:   []byte(`"v"`),
		},
		"MediumValue": {
			MsgType: common.MsgTLSetAdd,
			TopRec:  "rec",
			Bin:     "myset",
			Value:   []byte(`"medium length value for testing serialization"`),
		},
		"LargeValue": {
			MsgType: common.MsgTLSetAdd,
			TopRec:  "rec",
			Bin:     "myset",
			Value:   make([]byte, 1024), // 1KB of data
		},
		"VeryLargeValue": {
			MsgType: common.MsgTLSetAdd,
			TopRec:  "rec",
			Bin:     "myset",
			Value:   make([]byte, 1024*16), // 16KB of data
		},
		"CompleteMessage": {
			MsgType:    common.MsgTLSetRemove,
			TopRec:     "complete-test-rec",
			Bin:        "myset",
			Key:        []byte(`"complete-test-key"`),
			Value:      []byte(`"test-value-data"`),
			UserModule: []byte(`"StandardSet"`),
			FilterName: "even",
			FilterArgs: []byte(`[1,2,3]`),
			ReturnVal:  true,
			Capacity:   10000,
			Size:       20000,
			Ok:         true,
			Err:        "This is a test error message",
		},
		"ErrorMessage": {
			MsgType: common.MsgTError,
			Err:     "Lorem ipsum dolor sit amet, consectetur adipiscing elit. Sed do eiusmod tempor incididunt ut labore et dolore magna aliqua.",
		},
	}
}

// BenchmarkSerialize benchmarks serialization for all implementations with various message types
func BenchmarkSerialize(b *testing.B) {
	messages := benchmarkMessages()

	for name, factory := range testSerializers {
		for msgName, msg := range messages {
			b.Run(name+"_"+msgName, func(b *testing.B) {
				serializer := factory()
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					_, err := serializer.Serialize(msg)
					if err != nil {
						b.Fatalf("Failed to serialize: %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkDeserialize benchmarks deserialization for all implementations with various message types
func BenchmarkDeserialize(b *testing.B) {
	messages := benchmarkMessages()
	serializedData := make(map[string]map[string][]byte)

	for name, factory := range testSerializers {
		serializer := factory()
		serializedData[name] = make(map[string][]byte)

		for msgName, msg := range messages {
			data, err := serializer.Serialize(msg)
			if err != nil {
				b.Fatalf("Failed to serialize %s with %s: %v", msgName, name, err)
			}
			serializedData[name][msgName] = data
		}
	}

	for name, factory := range testSerializers {
		for msgName := range messages {
			b.Run(name+"_"+msgName, func(b *testing.B) {
				serializer := factory()
				data := serializedData[name][msgName]
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					var msg common.Message
					err := serializer.Deserialize(data, &msg)
					if err != nil {
						b.Fatalf("Failed to deserialize: %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkSize measures and reports the serialized size for each message type
func BenchmarkSize(b *testing.B) {
	messages := benchmarkMessages()

	for name, factory := range testSerializers {
		serializer := factory()

		for msgName, msg := range messages {
			b.Run(name+"_"+msgName, func(b *testing.B) {
				data, err := serializer.Serialize(msg)
				if err != nil {
					b.Fatalf("Failed to serialize: %v", err)
				}

				b.ReportMetric(float64(len(data)), "bytes")

				for i := 0; i < b.N; i++ {
					_ = data
				}
			})
		}
	}
}

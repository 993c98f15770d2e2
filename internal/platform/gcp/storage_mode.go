package gcp

import (
	"fmt"
	"net/url"
	"strings"
)

type ObjectStorageMode string

const (
	ObjectStorageModeGCS         ObjectStorageMode = "gcs"
	ObjectStorageModeGCSEmulator ObjectStorageMode = "gcs_emulator"
)

// ResolveObjectStorageMode picks the mode from the raw setting. An empty mode
// with an emulator host configured falls back to the emulator.
func ResolveObjectStorageMode(rawMode, emulatorHost string) (ObjectStorageMode, error) {
	mode := ObjectStorageMode(strings.ToLower(strings.TrimSpace(rawMode)))
	emulatorHost = strings.TrimSpace(emulatorHost)
	switch mode {
	case "":
		if emulatorHost != "" {
			return ObjectStorageModeGCSEmulator, nil
		}
		return ObjectStorageModeGCS, nil
	case ObjectStorageModeGCS:
		return mode, nil
	case ObjectStorageModeGCSEmulator:
		u, err := url.Parse(emulatorHost)
		if emulatorHost == "" || err != nil || u.Scheme == "" || u.Host == "" {
			return "", fmt.Errorf("invalid STORAGE_EMULATOR_HOST=%q; expected absolute URL like http://fake-gcs:4443", emulatorHost)
		}
		return mode, nil
	default:
		return "", fmt.Errorf("invalid OBJECT_STORAGE_MODE=%q (allowed: %q, %q)", rawMode, ObjectStorageModeGCS, ObjectStorageModeGCSEmulator)
	}
}

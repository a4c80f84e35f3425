package port

import (
	"errors"
	"testing"

	"go.bug.st/serial/enumerator"
)

func TestIsSerialName(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"ttyUSB0", true},
		{"ttyUSB12", true},
		{"ttyACM0", true},
		{"ttyS0", true},
		{"ttyAMA0", true},
		{"tty1", false},
		{"console", false},
		{"ptmx", false},
		{"random", false},
		{"ttyUSB", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isSerialName(tt.name); got != tt.expected {
				t.Errorf("isSerialName(%s) = %v, expected %v", tt.name, got, tt.expected)
			}
		})
	}
}

func TestListPortsEmptyDir(t *testing.T) {
	ports, err := ListPorts(t.TempDir())
	if err != nil {
		t.Fatalf("ListPorts failed: %v", err)
	}
	if len(ports) != 0 {
		t.Errorf("Expected no ports, got %v", ports)
	}
}

func TestListPortsMissingDir(t *testing.T) {
	if _, err := ListPorts("/nonexistent-dev-dir"); err == nil {
		t.Error("Expected error for missing directory")
	}
}

func TestGetPortInfoNonExistent(t *testing.T) {
	_, err := GetPortInfo("/dev/nonexistent")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Expected ErrDeviceNotFound, got %v", err)
	}
}

func TestGetPortInfoCharDevice(t *testing.T) {
	info, err := GetPortInfo("/dev/null")
	if err != nil {
		t.Fatalf("GetPortInfo failed for /dev/null: %v", err)
	}
	if info.Name != "null" {
		t.Errorf("Expected name 'null', got '%s'", info.Name)
	}
	if info.Description != "Serial Port" {
		t.Errorf("Expected generic description, got '%s'", info.Description)
	}
	if info.IsUSB {
		t.Error("/dev/null should not be reported as USB")
	}
}

func TestEnrichUSBInfo(t *testing.T) {
	orig := detailedPorts
	t.Cleanup(func() { detailedPorts = orig })

	detailedPorts = func() ([]*enumerator.PortDetails, error) {
		return []*enumerator.PortDetails{
			{Name: "/dev/ttyUSB1", IsUSB: true, VID: "0403", PID: "6001"},
			{Name: "/dev/ttyUSB0", IsUSB: true, VID: "10c4", PID: "ea60", SerialNumber: "0001", Product: "CP2102"},
		}, nil
	}

	info := &PortInfo{Name: "ttyUSB0", Path: "/dev/ttyUSB0"}
	enrichUSBInfo(info)

	if !info.IsUSB {
		t.Fatal("Expected USB details to be applied")
	}
	if info.VendorID != "10c4" || info.ProductID != "ea60" {
		t.Errorf("Unexpected VID:PID %s:%s", info.VendorID, info.ProductID)
	}
	if info.SerialNumber != "0001" || info.Product != "CP2102" {
		t.Errorf("Unexpected serial/product %q/%q", info.SerialNumber, info.Product)
	}
}

func TestEnrichUSBInfoEnumeratorError(t *testing.T) {
	orig := detailedPorts
	t.Cleanup(func() { detailedPorts = orig })

	detailedPorts = func() ([]*enumerator.PortDetails, error) {
		return nil, errors.New("no sysfs")
	}

	info := &PortInfo{Name: "ttyACM0", Path: "/dev/ttyACM0"}
	enrichUSBInfo(info)
	if info.IsUSB || info.VendorID != "" {
		t.Errorf("Expected info untouched, got %+v", info)
	}
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/b0bbywan/go-hwdiscovery/hwcontrol/detect"
	"github.com/b0bbywan/go-hwdiscovery/hwcontrol/v4l2"
	"github.com/b0bbywan/go-hwdiscovery/notifications"
)

type nodeLister interface {
	List() ([]string, error)
}

type capabilityProber interface {
	Probe(path string) (*v4l2.DeviceCapabilityReport, error)
}

type identityLookup interface {
	Lookup(ctx context.Context, devnode string) detect.Identity
}

// CameraService keeps the camera manifest in sync with the video nodes.
type CameraService struct {
	lister   nodeLister
	prober   capabilityProber
	identity identityLookup
	manifest *Manifest
	notifier *notifications.Notifier

	// probes of a single node must not overlap
	mu sync.Mutex
}

func NewCameraService(
	lister nodeLister,
	prober capabilityProber,
	identity identityLookup,
	manifest *Manifest,
	notifier *notifications.Notifier,
) *CameraService {
	return &CameraService{
		lister:   lister,
		prober:   prober,
		identity: identity,
		manifest: manifest,
		notifier: notifier,
	}
}

// ScanAll probes every video node and rewrites the manifest with the usable ones.
func (s *CameraService) ScanAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes, err := s.lister.List()
	if err != nil {
		s.notifier.PlayError()
		return fmt.Errorf("camera scan failed: %w", err)
	}

	var entries []CameraEntry
	for _, node := range nodes {
		entry, err := s.probe(ctx, node)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	log.Printf("[v4l2] Found %d usable cameras out of %d video nodes", len(entries), len(nodes))

	s.manifest.Replace(entries)
	return s.manifest.Write()
}

// ProbeOne probes a single node and adds it to the manifest when usable.
func (s *CameraService) ProbeOne(ctx context.Context, node string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.probe(ctx, node)
	if err != nil {
		return err
	}
	s.manifest.Add(entry)
	s.notifier.PlayEvent(notifications.EventCamera)
	return s.manifest.Write()
}

func (s *CameraService) Remove(node string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.manifest.Remove(node) {
		return nil
	}
	log.Printf("[v4l2] Camera %s removed", node)
	return s.manifest.Write()
}

func (s *CameraService) probe(ctx context.Context, node string) (CameraEntry, error) {
	report, err := s.prober.Probe(node)
	if err != nil {
		if errors.Is(err, v4l2.ErrNoUsableFormat) {
			log.Printf("[v4l2] Skipping %s: %v", node, err)
		} else {
			log.Printf("[v4l2] Failed to probe %s: %v", node, err)
		}
		return CameraEntry{}, err
	}
	entry := CameraEntry{
		Identity:     s.identity.Lookup(ctx, node),
		Capabilities: report,
	}
	log.Printf("[v4l2] Camera %s %s/%s (%s): H264=%d H265=%d MJPEG=%d RAW=%d",
		node, entry.Identity.Vendor, entry.Identity.Model, report.Summary(),
		len(report.Formats(v4l2.CodecH264)), len(report.Formats(v4l2.CodecH265)),
		len(report.Formats(v4l2.CodecMJPEG)), len(report.Formats(v4l2.CodecRaw)))
	return entry, nil
}

package openstack

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chameleoncloud/hammers-go/internal/cloud"
	"github.com/gophercloud/gophercloud/v2"
	"github.com/gophercloud/gophercloud/v2/openstack"
	"github.com/gophercloud/utils/v2/openstack/clientconfig"
)

// ironicAPIVersion is the microversion the janitor tools were written
// against; provision state names and the extra-field patch semantics
// are stable at this level.
const ironicAPIVersion = "1.9"

// Client manages the connection and service clients for OpenStack
// interactions. It wraps the gophercloud clients with retry logic and
// clouds.yaml profile management. An empty ProfileName falls back to
// the OS_* environment variables, which covers openrc-file users.
type Client struct {
	// ProfileName corresponds to the entry in clouds.yaml.
	ProfileName string
	// RetryConfig defines the behavior for transient error handling.
	RetryConfig cloud.RetryConfig

	// Internal service clients
	NetworkClient   *gophercloud.ServiceClient
	ComputeClient   *gophercloud.ServiceClient
	BareMetalClient *gophercloud.ServiceClient
	IdentityClient  *gophercloud.ServiceClient

	// ReservationClient talks to Blazar. It is nil on sites without a
	// reservation service; lease operations report that explicitly.
	ReservationClient *gophercloud.ServiceClient
}

// executeWithRetry runs an operation under the client's retry policy.
func (c *Client) executeWithRetry(ctx context.Context, opName string, operation func(ctx context.Context) error) error {
	return ExecuteAction(ctx, c.RetryConfig, opName, operation)
}

// NewClient authenticates against the configured cloud and initializes
// the Neutron, Nova, Ironic, Keystone and (when present) Blazar service
// clients. Authentication failure is fatal to the invocation.
func (c *Client) NewClient() error {
	slog.Debug("Initializing OpenStack client", "profile", c.ProfileName)

	var provider *gophercloud.ProviderClient

	authenticateOperation := func(ctx context.Context) error {
		opts := &clientconfig.ClientOpts{
			Cloud: c.ProfileName,
		}

		p, err := clientconfig.AuthenticatedClient(ctx, opts)
		if err != nil {
			return err
		}

		provider = p
		return nil
	}

	err := c.executeWithRetry(context.Background(), "OpenStack Authentication", authenticateOperation)
	if err != nil {
		return fmt.Errorf("authentication failed for profile '%s': %w", c.ProfileName, err)
	}

	endpointOpts := gophercloud.EndpointOpts{
		Availability: gophercloud.AvailabilityPublic,
	}

	if c.ProfileName != "" {
		opts := &clientconfig.ClientOpts{
			Cloud: c.ProfileName,
		}

		cloudConfig, err := clientconfig.GetCloudFromYAML(opts)
		if err != nil {
			return fmt.Errorf("failed to parse cloud config: %w", err)
		}

		switch cloudConfig.EndpointType {
		case "internal":
			endpointOpts.Availability = gophercloud.AvailabilityInternal
		case "admin":
			endpointOpts.Availability = gophercloud.AvailabilityAdmin
		}
		endpointOpts.Region = cloudConfig.RegionName
	}

	network, err := openstack.NewNetworkV2(provider, endpointOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize Network v2 client: %w", err)
	}

	compute, err := openstack.NewComputeV2(provider, endpointOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize Compute v2 client: %w", err)
	}

	bareMetal, err := openstack.NewBareMetalV1(provider, endpointOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize Bare Metal v1 client: %w", err)
	}
	bareMetal.Microversion = ironicAPIVersion

	identity, err := openstack.NewIdentityV3(provider, endpointOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize Identity v3 client: %w", err)
	}

	c.NetworkClient = network
	c.ComputeClient = compute
	c.BareMetalClient = bareMetal
	c.IdentityClient = identity

	// Blazar is absent on KVM sites; leave the client nil there.
	if reservation, err := newServiceClient(provider, endpointOpts, "reservation"); err != nil {
		slog.Debug("No reservation service in catalog, lease operations disabled", "error", err)
	} else {
		c.ReservationClient = reservation
	}

	return nil
}

// newServiceClient builds a ServiceClient for a catalog type gophercloud
// has no constructor for (Blazar's "reservation").
func newServiceClient(provider *gophercloud.ProviderClient, eo gophercloud.EndpointOpts, serviceType string) (*gophercloud.ServiceClient, error) {
	eo.ApplyDefaults(serviceType)
	url, err := provider.EndpointLocator(eo)
	if err != nil {
		return nil, err
	}
	return &gophercloud.ServiceClient{
		ProviderClient: provider,
		Endpoint:       url,
		Type:           serviceType,
	}, nil
}

// reservationClient returns the Blazar client or an error when the
// cloud has no reservation service.
func (c *Client) reservationClient() (*gophercloud.ServiceClient, error) {
	if c.ReservationClient == nil {
		return nil, fmt.Errorf("no reservation service available on this cloud")
	}
	return c.ReservationClient, nil
}

// Package verify fetches ground truth from infrastructure providers so tests
// can compare scan reports against what actually exists.
package verify

import (
	"context"
	"fmt"
	"net/url"

	"github.com/vmware/govmomi"
	"github.com/vmware/govmomi/find"
	"github.com/vmware/govmomi/property"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"

	"gitlab.apk-group.net/siem/qa/discovery-harness/config"
	"gitlab.apk-group.net/siem/qa/discovery-harness/pkg/logger"
)

// VMInfo is the slice of vCenter inventory data scan reports are checked
// against.
type VMInfo struct {
	Name       string
	PowerState string
	IPAddress  string
}

// Endpoint builds the SDK URL for a VCenter-type host and its credential.
func Endpoint(host config.HostConfig, cred config.Credential) *url.URL {
	addr := host.Address
	if host.Port != 0 {
		addr = fmt.Sprintf("%s:%d", host.Address, host.Port)
	}
	u := &url.URL{Scheme: "https", Host: addr, Path: "/sdk"}
	u.User = url.UserPassword(cred.Username, cred.Password)
	return u
}

// ListVMs connects to the endpoint and returns every virtual machine in the
// inventory with name, power state and guest IP.
func ListVMs(ctx context.Context, endpoint *url.URL) ([]VMInfo, error) {
	// Lab vCenters run self-signed certificates.
	client, err := govmomi.NewClient(ctx, endpoint, true)
	if err != nil {
		return nil, fmt.Errorf("connect to vcenter %s: %w", endpoint.Host, err)
	}
	defer func() {
		_ = client.Logout(ctx)
	}()

	finder := find.NewFinder(client.Client, true)
	dc, err := finder.DefaultDatacenter(ctx)
	if err != nil {
		return nil, fmt.Errorf("find datacenter: %w", err)
	}
	finder.SetDatacenter(dc)

	vms, err := finder.VirtualMachineList(ctx, "*")
	if err != nil {
		return nil, fmt.Errorf("list virtual machines: %w", err)
	}

	refs := make([]types.ManagedObjectReference, 0, len(vms))
	for _, vm := range vms {
		refs = append(refs, vm.Reference())
	}

	var managed []mo.VirtualMachine
	pc := property.DefaultCollector(client.Client)
	if err := pc.Retrieve(ctx, refs, []string{"name", "runtime.powerState", "guest.ipAddress"}, &managed); err != nil {
		return nil, fmt.Errorf("retrieve vm properties: %w", err)
	}

	infos := make([]VMInfo, 0, len(managed))
	for _, vm := range managed {
		info := VMInfo{
			Name:       vm.Name,
			PowerState: string(vm.Runtime.PowerState),
		}
		if vm.Guest != nil {
			info.IPAddress = vm.Guest.IpAddress
		}
		infos = append(infos, info)
	}

	logger.DebugContext(ctx, "Verify: vcenter %s reports %d virtual machines", endpoint.Host, len(infos))
	return infos, nil
}

// SPDX-FileCopyrightText: Copyright 2025 WigglyMuffin
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/wigglymuffin/catalog-core/catalog"
	"github.com/wigglymuffin/catalog-core/reconcile/mocks"
)

func localCandidate(identity, assemblyVersion string, channel catalog.Channel) *catalog.Candidate {
	return &catalog.Candidate{
		Manifest: catalog.Manifest{
			Name:            identity,
			InternalName:    identity,
			AssemblyVersion: assemblyVersion,
		},
		Channel:    channel,
		Provenance: catalog.ProvenanceLocal,
	}
}

func remoteCandidate(identity, assemblyVersion string) *catalog.Candidate {
	return &catalog.Candidate{
		Manifest: catalog.Manifest{
			Name:            identity,
			InternalName:    identity,
			AssemblyVersion: assemblyVersion,
		},
		Channel:     catalog.ChannelMain,
		Provenance:  catalog.ProvenanceRemote,
		Repo:        "owner/" + identity,
		Asset:       "latest.zip",
		ReleaseUnix: 1700000000,
	}
}

func TestReconcileSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		remote         *catalog.Candidate
		local          *catalog.Candidate
		wantProvenance catalog.Provenance
		wantVersion    string
		wantEmpty      bool
	}{
		{
			name:           "remote newer wins",
			remote:         remoteCandidate("Bar", "2.1.0.0"),
			local:          localCandidate("Bar", "2.0.0.0", catalog.ChannelMain),
			wantProvenance: catalog.ProvenanceRemote,
			wantVersion:    "2.1.0.0",
		},
		{
			name:           "local strictly newer wins",
			remote:         remoteCandidate("Bar", "1.9.0.0"),
			local:          localCandidate("Bar", "2.0.0.0", catalog.ChannelMain),
			wantProvenance: catalog.ProvenanceLocal,
			wantVersion:    "2.0.0.0",
		},
		{
			name:           "equal versions prefer remote",
			remote:         remoteCandidate("Bar", "2.0.0"),
			local:          localCandidate("Bar", "2.0.0.0", catalog.ChannelMain),
			wantProvenance: catalog.ProvenanceRemote,
			wantVersion:    "2.0.0",
		},
		{
			name:           "incomparable versions prefer remote",
			remote:         remoteCandidate("Bar", "nightly"),
			local:          localCandidate("Bar", "2.0.0.0", catalog.ChannelMain),
			wantProvenance: catalog.ProvenanceRemote,
			wantVersion:    "nightly",
		},
		{
			name:           "remote only",
			remote:         remoteCandidate("Bar", "1.0.0"),
			wantProvenance: catalog.ProvenanceRemote,
			wantVersion:    "1.0.0",
		},
		{
			name:           "local only",
			local:          localCandidate("Bar", "1.0.0", catalog.ChannelMain),
			wantProvenance: catalog.ProvenanceLocal,
			wantVersion:    "1.0.0",
		},
		{
			name:      "absent from both sources is omitted",
			wantEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			local := mocks.NewMockLocalSource(ctrl)
			remote := mocks.NewMockRemoteSource(ctrl)

			repos := []RepoRef{{Identity: "Bar", URL: "https://github.com/owner/Bar"}}
			remote.EXPECT().Candidate(gomock.Any(), "Bar", "https://github.com/owner/Bar").
				Return(tt.remote, nil)
			var locals []*catalog.Candidate
			if tt.local != nil {
				locals = append(locals, tt.local)
			}
			local.EXPECT().Candidates("Bar").Return(locals, nil)
			local.EXPECT().Identities().Return([]string{"Bar"}, nil)

			out, err := NewEngine(local, remote).Reconcile(context.Background(), repos)
			require.NoError(t, err)

			if tt.wantEmpty {
				assert.Empty(t, out)
				return
			}
			require.Len(t, out, 1)
			assert.Equal(t, tt.wantProvenance, out[0].Provenance)
			assert.Equal(t, tt.wantVersion, out[0].AssemblyVersion)
		})
	}
}

func TestReconcileRegionalPassthrough(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	local := mocks.NewMockLocalSource(ctrl)
	remote := mocks.NewMockRemoteSource(ctrl)

	repos := []RepoRef{{Identity: "Baz", URL: "https://github.com/owner/Baz"}}
	remote.EXPECT().Candidate(gomock.Any(), "Baz", "https://github.com/owner/Baz").
		Return(remoteCandidate("Baz", "3.0.0"), nil)
	local.EXPECT().Candidates("Baz").Return([]*catalog.Candidate{
		localCandidate("Baz", "1.0.0", catalog.ChannelMain),
		localCandidate("Baz", "1.0.0", catalog.ChannelRegional),
	}, nil)
	local.EXPECT().Identities().Return([]string{"Baz"}, nil)

	out, err := NewEngine(local, remote).Reconcile(context.Background(), repos)
	require.NoError(t, err)
	require.Len(t, out, 2)

	// The remote main candidate wins, yet the local regional entry survives.
	assert.Equal(t, catalog.ProvenanceRemote, out[0].Provenance)
	assert.Equal(t, catalog.ChannelMain, out[0].Channel)
	assert.Equal(t, catalog.ProvenanceLocal, out[1].Provenance)
	assert.Equal(t, catalog.ChannelRegional, out[1].Channel)
}

func TestReconcileOrdering(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	local := mocks.NewMockLocalSource(ctrl)
	remote := mocks.NewMockRemoteSource(ctrl)

	// Allow-list order is Beta then Alpha; local enumeration adds Gamma and
	// Delta. Output must follow allow-list order first, then enumeration
	// order, regardless of remote completion order.
	repos := []RepoRef{
		{Identity: "Beta", URL: "https://github.com/owner/Beta"},
		{Identity: "Alpha", URL: "https://github.com/owner/Alpha"},
	}
	remote.EXPECT().Candidate(gomock.Any(), "Beta", gomock.Any()).Return(remoteCandidate("Beta", "1.0"), nil)
	remote.EXPECT().Candidate(gomock.Any(), "Alpha", gomock.Any()).Return(remoteCandidate("Alpha", "1.0"), nil)
	local.EXPECT().Candidates("Beta").Return(nil, nil)
	local.EXPECT().Candidates("Alpha").Return(nil, nil)
	local.EXPECT().Identities().Return([]string{"Alpha", "Delta", "Gamma"}, nil)
	local.EXPECT().Candidates("Delta").Return([]*catalog.Candidate{
		localCandidate("Delta", "1.0", catalog.ChannelMain),
	}, nil)
	local.EXPECT().Candidates("Gamma").Return([]*catalog.Candidate{
		localCandidate("Gamma", "1.0", catalog.ChannelMain),
	}, nil)

	out, err := NewEngine(local, remote, WithWorkers(2)).Reconcile(context.Background(), repos)
	require.NoError(t, err)

	var names []string
	for _, m := range out {
		names = append(names, m.InternalName)
	}
	assert.Equal(t, []string{"Beta", "Alpha", "Delta", "Gamma"}, names)
}

func TestReconcileDuplicateAllowListEntry(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	local := mocks.NewMockLocalSource(ctrl)
	remote := mocks.NewMockRemoteSource(ctrl)

	repos := []RepoRef{
		{Identity: "Foo", URL: "https://github.com/owner/Foo"},
		{Identity: "Foo", URL: "https://github.com/other/Foo"},
	}
	remote.EXPECT().Candidate(gomock.Any(), "Foo", gomock.Any()).
		Return(remoteCandidate("Foo", "1.0"), nil).Times(2)
	local.EXPECT().Candidates("Foo").Return(nil, nil)
	local.EXPECT().Identities().Return(nil, nil)

	out, err := NewEngine(local, remote).Reconcile(context.Background(), repos)
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestReconcileRemoteFailureIsolated(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	local := mocks.NewMockLocalSource(ctrl)
	remote := mocks.NewMockRemoteSource(ctrl)

	repos := []RepoRef{
		{Identity: "Broken", URL: "https://github.com/owner/Broken"},
		{Identity: "Fine", URL: "https://github.com/owner/Fine"},
	}
	remote.EXPECT().Candidate(gomock.Any(), "Broken", gomock.Any()).
		Return(nil, errors.New("boom"))
	remote.EXPECT().Candidate(gomock.Any(), "Fine", gomock.Any()).
		Return(remoteCandidate("Fine", "1.0"), nil)
	// The failed identity falls back to local storage, which has nothing.
	local.EXPECT().Candidates("Broken").Return(nil, nil)
	local.EXPECT().Candidates("Fine").Return(nil, nil)
	local.EXPECT().Identities().Return(nil, nil)

	out, err := NewEngine(local, remote).Reconcile(context.Background(), repos)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Fine", out[0].InternalName)
}

func TestReconcileLocalListingFailureAborts(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	local := mocks.NewMockLocalSource(ctrl)
	remote := mocks.NewMockRemoteSource(ctrl)

	local.EXPECT().Identities().Return(nil, errors.New("disk gone"))

	_, err := NewEngine(local, remote).Reconcile(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing local identities")
}

func TestReconcileCancelledContext(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	local := mocks.NewMockLocalSource(ctrl)
	remote := mocks.NewMockRemoteSource(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	remote.EXPECT().Candidate(gomock.Any(), "Foo", gomock.Any()).
		DoAndReturn(func(ctx context.Context, _, _ string) (*catalog.Candidate, error) {
			return nil, ctx.Err()
		}).AnyTimes()

	_, err := NewEngine(local, remote).Reconcile(ctx, []RepoRef{
		{Identity: "Foo", URL: "https://github.com/owner/Foo"},
	})
	require.ErrorIs(t, err, context.Canceled)
}

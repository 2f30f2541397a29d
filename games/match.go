package games

import (
	"fmt"
	"github.com/google/uuid"
	"github.com/lefinal/bedwars-server/errors"
	"github.com/lefinal/bedwars-server/maps"
	"github.com/lefinal/bedwars-server/metrics"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"math/rand"
	"sync"
)

// materialAir is the material reported by the World for empty blocks.
const materialAir = "AIR"

// Reward bounds for winning team members.
const (
	minWinReward = 150
	maxWinReward = 300
)

// leaderboardSize is the number of entries shown to joining players.
const leaderboardSize = 10

// Collaborators holds the dependencies of a Match.
type Collaborators struct {
	Roster     *Roster
	Votes      *VoteTally
	Catalog    MapCatalog
	World      World
	Stats      StatsRecorder
	Presenter  Presenter
	Terminator Terminator
}

// Snapshot is a read-only view of a Match.
type Snapshot struct {
	Phase        MatchPhase   `json:"phase"`
	Countdown    int          `json:"countdown"`
	PlayType     string       `json:"play_type"`
	Online       int          `json:"online"`
	ForceStarted bool         `json:"force_started"`
	Config       *MatchConfig `json:"config,omitempty"`
	Teams        []TeamView   `json:"teams"`
	Winner       *TeamKey     `json:"winner,omitempty"`
	PendingTasks int          `json:"pending_tasks"`
}

// Match is the lifecycle engine of a single match. Except for Snapshot and the
// vote operations, all methods must be called from the simulation thread.
type Match struct {
	logger     *zap.Logger
	playType   PlayType
	scheduler  *Scheduler
	spawner    *Spawner
	blocks     *TimedBlocks
	roster     *Roster
	votes      *VoteTally
	catalog    MapCatalog
	world      World
	stats      StatsRecorder
	presenter  Presenter
	terminator Terminator
	rng        *rand.Rand
	// ticking guards Tick against reentrance.
	ticking atomic.Bool

	phase        MatchPhase
	countdown    int
	forceStarted bool
	// tickTask is the repeating task calling Tick.
	tickTask    TaskID
	online      map[uuid.UUID]struct{}
	configLock  configLock
	selectedMap maps.Map
	winner      *TeamKey
	terminated  bool

	// snapshotMutex locks snapshot.
	snapshotMutex sync.RWMutex
	snapshot      Snapshot
}

// NewMatch creates a Match in MatchPhaseLobby. The Roster is expected to hold
// the teams for the given PlayType.
func NewMatch(logger *zap.Logger, playType PlayType, scheduler *Scheduler, collaborators Collaborators, rng *rand.Rand) *Match {
	m := &Match{
		logger:     logger,
		playType:   playType,
		scheduler:  scheduler,
		spawner:    NewSpawner(logger.Named("spawner"), scheduler, collaborators.World),
		blocks:     NewTimedBlocks(logger.Named("timed-blocks"), scheduler, collaborators.World),
		roster:     collaborators.Roster,
		votes:      collaborators.Votes,
		catalog:    collaborators.Catalog,
		world:      collaborators.World,
		stats:      collaborators.Stats,
		presenter:  collaborators.Presenter,
		terminator: collaborators.Terminator,
		rng:        rng,
		phase:      MatchPhaseLobby,
		countdown:  LobbyCountdown,
		online:     make(map[uuid.UUID]struct{}),
	}
	m.roster.Observe(m.rosterChanged)
	m.refreshSnapshot()
	return m
}

// Snapshot returns the last published view of the match. It is safe for
// concurrent use.
func (m *Match) Snapshot() Snapshot {
	m.snapshotMutex.RLock()
	defer m.snapshotMutex.RUnlock()
	return m.snapshot
}

// Phase returns the current phase.
func (m *Match) Phase() MatchPhase {
	return m.phase
}

// Countdown returns the remaining seconds of the current phase.
func (m *Match) Countdown() int {
	return m.countdown
}

// Config returns the locked MatchConfig.
func (m *Match) Config() (MatchConfig, bool) {
	return m.configLock.Config()
}

// TimedBlocks returns the timed blocks of the match.
func (m *Match) TimedBlocks() *TimedBlocks {
	return m.blocks
}

// Spawner returns the Spawner of the match.
func (m *Match) Spawner() *Spawner {
	return m.spawner
}

func (m *Match) buildSnapshot() Snapshot {
	s := Snapshot{
		Phase:        m.phase,
		Countdown:    m.countdown,
		PlayType:     m.playType.String(),
		Online:       len(m.online),
		ForceStarted: m.forceStarted,
		Teams:        m.roster.Views(),
		PendingTasks: m.scheduler.Pending(),
	}
	if config, ok := m.configLock.Config(); ok {
		s.Config = &config
	}
	if m.winner != nil {
		winner := *m.winner
		s.Winner = &winner
	}
	return s
}

func (m *Match) refreshSnapshot() {
	s := m.buildSnapshot()
	m.snapshotMutex.Lock()
	m.snapshot = s
	m.snapshotMutex.Unlock()
}

func (m *Match) rosterChanged(_ RosterUpdate) {
	m.presenter.RosterChanged(m.roster.Views())
}

func (m *Match) setPhase(phase MatchPhase) {
	m.logger.Info("match phase changed",
		zap.Any("from", m.phase),
		zap.Any("to", phase),
		zap.Int("online", len(m.online)))
	m.phase = phase
	metrics.PhaseTransitions.WithLabelValues(string(phase)).Inc()
	m.presenter.PhaseChanged(m.buildSnapshot())
}

func (m *Match) announce(announcement Announcement) {
	m.presenter.Announce(announcement)
}

func (m *Match) matchID() string {
	config, _ := m.configLock.Config()
	return config.MatchID
}

func nullUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: true}
}

// onlinePlayers returns all online players ordered by id.
func (m *Match) onlinePlayers() []uuid.UUID {
	return sortedIDs(m.online)
}

// ensureTickTask schedules Tick each second if not already scheduled.
func (m *Match) ensureTickTask() {
	if m.tickTask != 0 && m.scheduler.IsScheduled(m.tickTask) {
		return
	}
	m.tickTask = m.scheduler.Every("match-tick", GameTicksPerSecond, GameTicksPerSecond, m.Tick)
}

func (m *Match) cancelTickTask() {
	if m.tickTask == 0 {
		return
	}
	m.scheduler.Cancel(m.tickTask)
	m.tickTask = 0
}

// PlayerJoined registers the given player as online.
func (m *Match) PlayerJoined(player uuid.UUID) {
	defer m.refreshSnapshot()
	if _, ok := m.online[player]; ok {
		return
	}
	m.online[player] = struct{}{}
	metrics.OnlinePlayers.Set(float64(len(m.online)))
	m.logger.Debug("player joined", zap.String("player", player.String()), zap.Any("phase", m.phase))
	if m.phase == MatchPhaseResolving {
		// The server shuts down soon, so the player is only counted as online.
		return
	}
	m.stats.EnsureProfile(player)
	m.stats.PlacementRank(player, func(rank int, err error) {
		if err != nil {
			errors.Log(m.logger, errors.Wrap(err, "placement rank", errors.Details{"player": player}))
			m.announce(Announcement{Kind: AnnouncementNotPlaced, Player: nullUUID(player)})
			return
		}
		m.announce(Announcement{Kind: AnnouncementPlacement, Player: nullUUID(player), Value: rank})
	})
	m.stats.Top(leaderboardSize, func(entries []LeaderboardEntry, err error) {
		if err != nil {
			errors.Log(m.logger, errors.Wrap(err, "top players", errors.Details{"player": player}))
			return
		}
		m.presenter.Leaderboard(player, entries)
	})
	switch m.phase {
	case MatchPhaseLobby:
		if m.playType.CanStart(len(m.online)) {
			err := m.RequestStart(false)
			if err != nil {
				errors.Log(m.logger, errors.Wrap(err, "auto start", nil))
			}
			return
		}
		m.announcePlayersNeeded()
	case MatchPhaseInGame:
		m.makeSpectator(player)
		m.announce(Announcement{Kind: AnnouncementSpectating, Player: nullUUID(player)})
	}
}

// PlayerQuit unregisters the given player. Votes are cleared and the player is
// removed from its team. While in game, this may eliminate the team and end
// the match.
func (m *Match) PlayerQuit(player uuid.UUID) {
	defer m.refreshSnapshot()
	if _, ok := m.online[player]; !ok {
		return
	}
	delete(m.online, player)
	metrics.OnlinePlayers.Set(float64(len(m.online)))
	m.logger.Debug("player quit", zap.String("player", player.String()), zap.Any("phase", m.phase))
	m.votes.ClearPlayer(player)
	team, hadTeam := m.roster.TeamOf(player)
	m.roster.RemovePlayer(player)
	if m.phase == MatchPhaseInGame && hadTeam && team.Key != SpectatorTeam {
		m.checkTeamWipe(team)
	}
}

func (m *Match) announcePlayersNeeded() {
	m.announce(Announcement{
		Kind:  AnnouncementPlayersNeeded,
		Value: m.playType.PlayersNeeded(len(m.online)),
	})
}

// RequestStart starts the countdown from MatchPhaseLobby if enough players are
// online or force is set. While the countdown is running, the remaining time is
// kept and force only disables further eligibility checks.
func (m *Match) RequestStart(force bool) error {
	defer m.refreshSnapshot()
	switch m.phase {
	case MatchPhaseLobby:
	case MatchPhaseCountdown:
		if force {
			m.forceStarted = true
		}
		return nil
	default:
		return errors.NewMatchPhaseViolationError("start", m.phase)
	}
	online := len(m.online)
	if !force && !m.playType.CanStart(online) {
		return errors.NewRejectionError(errors.KindNotEligible, "not enough players to start",
			errors.Details{
				"online":    online,
				"needed":    m.playType.PlayersNeeded(online),
				"play_type": m.playType.String(),
			})
	}
	m.forceStarted = force
	m.countdown = LobbyCountdown
	m.setPhase(MatchPhaseCountdown)
	m.ensureTickTask()
	m.announce(Announcement{Kind: AnnouncementCountdownStarted, Value: m.countdown})
	return nil
}

// Tick advances the match by one second. It is scheduled by the match itself
// and panics when called while another Tick is running.
func (m *Match) Tick() {
	if !m.ticking.CAS(false, true) {
		panic(errors.Error{
			Code:    errors.ErrFatal,
			Kind:    errors.KindReentrantTick,
			Message: "tick called while ticking",
			Details: errors.Details{"phase": m.phase},
		})
	}
	defer m.ticking.Store(false)
	defer m.refreshSnapshot()
	switch m.phase {
	case MatchPhaseCountdown:
		m.tickCountdown()
	case MatchPhaseInGame:
		m.tickInGame()
	case MatchPhaseResolving:
		m.tickResolving()
	default:
		m.logger.Debug("tick in lobby", zap.Int("online", len(m.online)))
	}
}

func (m *Match) tickCountdown() {
	if !m.forceStarted && !m.playType.CanStart(len(m.online)) {
		m.cancelCountdown()
		return
	}
	m.countdown--
	if m.countdown <= ConfigLockCheckpoint && !m.configLock.IsLocked() {
		m.lockConfig()
	}
	if m.countdown <= 0 {
		m.startGame()
		return
	}
	switch {
	case m.countdown == 20 || m.countdown < ConfigLockCheckpoint:
		m.announce(Announcement{Kind: AnnouncementCountdown, Value: m.countdown})
	case (m.countdown == 15 || m.countdown == 25) && !m.configLock.IsLocked():
		m.announce(Announcement{Kind: AnnouncementVotingEnds, Value: m.countdown - ConfigLockCheckpoint})
	}
	m.presenter.Countdown(m.phase, m.countdown, m.matchID())
}

// cancelCountdown returns to MatchPhaseLobby. The tick task is cancelled before
// returning. An already locked config stays locked.
func (m *Match) cancelCountdown() {
	m.cancelTickTask()
	m.forceStarted = false
	m.countdown = LobbyCountdown
	m.setPhase(MatchPhaseLobby)
	m.announce(Announcement{Kind: AnnouncementCountdownCancelled})
	m.announcePlayersNeeded()
}

// lockConfig resolves map and modifier and locks them into the MatchConfig.
// Votes are discarded afterwards.
func (m *Match) lockConfig() {
	mapName, ok := m.votes.WinningMap()
	if !ok {
		mapName = m.randomMap()
	}
	goldEnabled := m.votes.WinningModifier()
	m.votes.Close()
	selected, ok := m.catalog.Get(mapName)
	if !ok {
		errors.Log(m.logger, errors.NewInternalError("no map available for locking",
			errors.Details{"map": mapName, "catalog": m.catalog.ListMapIDs()}))
		selected = maps.Map{Name: mapName}
	}
	config := MatchConfig{
		PlayType:    m.playType.String(),
		MapName:     selected.Name,
		GoldEnabled: goldEnabled,
		MatchID:     GenerateMatchID(m.rng),
	}
	m.configLock.Lock(config)
	m.selectedMap = selected
	m.roster.ApplyMap(selected)
	m.spawner.Prepare(selected, goldEnabled)
	m.logger.Info("match config locked",
		zap.String("map", config.MapName),
		zap.Bool("gold_enabled", config.GoldEnabled),
		zap.String("match_id", config.MatchID))
	m.announce(Announcement{Kind: AnnouncementConfigLocked, Text: config.MapName})
	m.presenter.PhaseChanged(m.buildSnapshot())
}

// randomMap picks a map from the catalog. Single map catalogs always return
// their only map.
func (m *Match) randomMap() string {
	ids := m.catalog.ListMapIDs()
	switch len(ids) {
	case 0:
		return ""
	case 1:
		return ids[0]
	}
	return ids[m.rng.Intn(len(ids))]
}

// startGame assigns unassigned players, prepares the teams and starts spawning.
func (m *Match) startGame() {
	if !m.configLock.IsLocked() {
		m.lockConfig()
	}
	unassigned := make([]uuid.UUID, 0)
	for _, player := range m.onlinePlayers() {
		if _, ok := m.roster.TeamOf(player); !ok {
			unassigned = append(unassigned, player)
		}
	}
	for _, player := range m.roster.DistributeUnassigned(unassigned, m.rng) {
		m.logger.Debug("no free team slot", zap.String("player", player.String()))
		m.makeSpectator(player)
		m.announce(Announcement{Kind: AnnouncementSpectating, Player: nullUUID(player)})
	}
	teams := m.roster.AllTeams()
	for _, team := range teams {
		if team.Size() > 0 {
			m.roster.SetBedDestroyed(team.Key, false)
			continue
		}
		// Empty teams have no bed to defend.
		m.roster.SetBedDestroyed(team.Key, true)
		m.clearBed(team)
	}
	for _, team := range teams {
		for _, player := range team.Members() {
			m.roster.MarkAlive(player)
			m.stats.RecordEvent(player, StatGamesPlayed, 1)
			if team.Spawn != nil {
				m.world.Teleport(player, *team.Spawn)
			}
		}
	}
	m.spawner.Start()
	m.blocks.Start()
	m.countdown = MatchDuration
	m.setPhase(MatchPhaseInGame)
	m.announce(Announcement{Kind: AnnouncementGameStarted, Text: m.selectedMap.Name})
}

func (m *Match) tickInGame() {
	m.countdown--
	if m.countdown <= 0 {
		m.EndMatch(nil)
		return
	}
	m.presenter.Countdown(m.phase, m.countdown, m.matchID())
}

func (m *Match) tickResolving() {
	m.countdown--
	if m.countdown > 0 {
		m.presenter.Countdown(m.phase, m.countdown, m.matchID())
		return
	}
	m.cancelTickTask()
	if m.terminated {
		return
	}
	m.terminated = true
	m.logger.Info("shutdown countdown elapsed")
	m.terminator.Terminate()
}

// makeSpectator adds the player to the SpectatorTeam and teleports it to the
// spectator location.
func (m *Match) makeSpectator(player uuid.UUID) {
	err := m.roster.AddPlayer(SpectatorTeam, player)
	if err != nil {
		errors.Log(m.logger, errors.Wrap(err, "add spectator", errors.Details{"player": player}))
	}
	m.teleportToSpectator(player)
}

func (m *Match) teleportToSpectator(player uuid.UUID) {
	if m.selectedMap.Spectator == nil {
		return
	}
	m.world.Teleport(player, *m.selectedMap.Spectator)
}

// clearBed removes both bed blocks of the given team unless they are already
// air.
func (m *Match) clearBed(team *Team) {
	for _, location := range team.BedLocations() {
		if material, ok := m.world.BlockAt(location); ok && material == materialAir {
			continue
		}
		m.world.ClearBlock(location)
	}
}

// ReportElimination handles the death of the given player. Members of teams
// with intact bed respawn. Otherwise, the player is out for the rest of the
// match, which may eliminate the team and end the match.
func (m *Match) ReportElimination(victim uuid.UUID, killer uuid.NullUUID) {
	defer m.refreshSnapshot()
	if m.phase != MatchPhaseInGame {
		m.logger.Debug("ignoring elimination outside of game",
			zap.String("victim", victim.String()),
			zap.Any("phase", m.phase))
		return
	}
	team, ok := m.roster.TeamOf(victim)
	if !ok || team.Key == SpectatorTeam || !team.IsAlive(victim) {
		errors.Log(m.logger, errors.Error{
			Code:    errors.ErrNotFound,
			Kind:    errors.KindPlayerNotInTeam,
			Message: "elimination of player without alive team membership",
			Details: errors.Details{"victim": victim},
		})
		return
	}
	m.stats.RecordEvent(victim, StatDeath, 1)
	if killer.Valid && killer.UUID != victim {
		m.stats.RecordEvent(killer.UUID, StatKill, 1)
	}
	if !team.BedDestroyed {
		metrics.Eliminations.WithLabelValues("respawn").Inc()
		if team.Spawn != nil {
			m.world.Teleport(victim, *team.Spawn)
		}
		m.announce(Announcement{Kind: AnnouncementRespawn, Player: nullUUID(victim), Team: team.Key})
		return
	}
	metrics.Eliminations.WithLabelValues("final").Inc()
	m.roster.MarkDead(victim)
	m.teleportToSpectator(victim)
	m.announce(Announcement{Kind: AnnouncementPlayerEliminated, Player: nullUUID(victim), Team: team.Key})
	m.checkTeamWipe(team)
}

// checkTeamWipe eliminates the given team if it has no alive members left and
// cannot respawn anymore. Afterwards, the winner check runs.
func (m *Match) checkTeamWipe(team *Team) {
	if team.Eliminated || team.AliveCount() > 0 {
		return
	}
	if !team.BedDestroyed && team.Size() > 0 {
		return
	}
	m.roster.Eliminate(team.Key)
	m.logger.Info("team eliminated", zap.String("team", string(team.Key)))
	m.announce(Announcement{Kind: AnnouncementTeamEliminated, Team: team.Key, Text: team.Label})
	m.checkWinner()
}

// checkWinner ends the match if at most one team has alive members left.
func (m *Match) checkWinner() {
	if m.phase != MatchPhaseInGame {
		return
	}
	remaining := m.roster.RemainingTeams()
	switch len(remaining) {
	case 0:
		m.EndMatch(nil)
	case 1:
		winner := remaining[0].Key
		m.EndMatch(&winner)
	}
}

// ReportBedDestroyed destroys the bed of the team with the given key. Breaking
// an already destroyed bed is a no-op. Members of the team cannot break their
// own bed.
func (m *Match) ReportBedDestroyed(key TeamKey, breaker uuid.NullUUID) error {
	defer m.refreshSnapshot()
	if m.phase != MatchPhaseInGame {
		return errors.NewMatchPhaseViolationError("bed destruction", m.phase)
	}
	team, ok := m.roster.Team(key)
	if !ok || key == SpectatorTeam {
		return errors.Error{
			Code:    errors.ErrNotFound,
			Kind:    errors.KindUnknownTeam,
			Message: fmt.Sprintf("bed destruction for unknown team %s", key),
			Details: errors.Details{"team": key},
		}
	}
	if breaker.Valid {
		if breakerTeam, ok := m.roster.TeamOf(breaker.UUID); ok && breakerTeam.Key == key {
			return errors.NewRejectionError(errors.KindOwnBed, "cannot destroy own bed",
				errors.Details{"team": key, "breaker": breaker.UUID})
		}
	}
	if team.BedDestroyed {
		return nil
	}
	m.roster.SetBedDestroyed(key, true)
	m.clearBed(team)
	if breaker.Valid {
		m.stats.RecordEvent(breaker.UUID, StatBedsDestroyed, 1)
	}
	m.logger.Info("bed destroyed", zap.String("team", string(key)))
	m.announce(Announcement{Kind: AnnouncementBedDestroyed, Player: breaker, Team: key, Text: team.Label})
	m.checkTeamWipe(team)
	return nil
}

// BedAt returns the key of the team whose bed occupies the given block.
func (m *Match) BedAt(location maps.Location) (TeamKey, bool) {
	team, ok := m.roster.BedAt(location)
	if !ok {
		return "", false
	}
	return team.Key, true
}

// EndMatch moves to MatchPhaseResolving, stops spawning, credits the winner and
// starts the shutdown countdown. Calling it again is a no-op.
func (m *Match) EndMatch(winner *TeamKey) {
	defer m.refreshSnapshot()
	if m.phase == MatchPhaseResolving {
		return
	}
	m.spawner.Stop()
	m.blocks.Stop()
	if winner != nil {
		if team, ok := m.roster.Team(*winner); ok {
			w := team.Key
			m.winner = &w
			reward := minWinReward + m.rng.Intn(maxWinReward-minWinReward+1)
			for _, player := range team.Members() {
				m.stats.RecordEvent(player, StatWin, 1)
			}
			m.logger.Info("match won", zap.String("team", string(team.Key)), zap.Int("reward", reward))
			m.announce(Announcement{Kind: AnnouncementWinner, Team: team.Key, Value: reward, Text: team.Label})
		} else {
			errors.Log(m.logger, errors.NewResourceNotFoundError("unknown winner team",
				errors.Details{"team": *winner}))
		}
	}
	if m.winner == nil {
		m.logger.Info("match ended without winner")
		m.announce(Announcement{Kind: AnnouncementNoWinner})
	}
	m.roster.Teardown()
	m.countdown = ShutdownCountdown
	m.setPhase(MatchPhaseResolving)
	m.announce(Announcement{Kind: AnnouncementShutdown, Value: m.countdown})
	m.ensureTickTask()
}

// PlaceTimedBlock registers a block placed by a player that is removed after
// the given number of seconds. Blocks can only be placed while in game.
func (m *Match) PlaceTimedBlock(location maps.Location, lifetimeSeconds int) error {
	if m.phase != MatchPhaseInGame {
		return errors.NewMatchPhaseViolationError("place timed block", m.phase)
	}
	m.blocks.Track(location, lifetimeSeconds)
	return nil
}

// ForceMap sets the map override. It is rejected once the config is locked.
func (m *Match) ForceMap(mapName string) error {
	if m.configLock.IsLocked() {
		return errors.NewMatchPhaseViolationError("force map", "config locked")
	}
	return m.votes.ForceMap(mapName)
}

// ShortenCountdown reduces the remaining countdown to the given seconds. The
// countdown is never extended and at least one second remains.
func (m *Match) ShortenCountdown(seconds int) error {
	defer m.refreshSnapshot()
	if m.phase != MatchPhaseCountdown {
		return errors.NewMatchPhaseViolationError("shorten countdown", m.phase)
	}
	if seconds < 1 {
		seconds = 1
	}
	if seconds < m.countdown {
		m.logger.Debug("countdown shortened", zap.Int("from", m.countdown), zap.Int("to", seconds))
		m.countdown = seconds
	}
	m.announce(Announcement{Kind: AnnouncementCountdown, Value: m.countdown})
	return nil
}

// SelectTeam moves the player to the team with the given key. Teams can only
// be selected before the game starts.
func (m *Match) SelectTeam(player uuid.UUID, key TeamKey) error {
	defer m.refreshSnapshot()
	if m.phase != MatchPhaseLobby && m.phase != MatchPhaseCountdown {
		return errors.NewMatchPhaseViolationError("team selection", m.phase)
	}
	if key == SpectatorTeam {
		return errors.NewRejectionError(errors.KindUnknownTeam, "spectator team cannot be selected",
			errors.Details{"team": key})
	}
	if _, ok := m.online[player]; !ok {
		return errors.NewResourceNotFoundError("player not online", errors.Details{"player": player})
	}
	return m.roster.AddPlayer(key, player)
}

// CastMapVote forwards the vote to the VoteTally. It is safe for concurrent use.
// Votes are rejected after the config has been locked.
func (m *Match) CastMapVote(player uuid.UUID, mapName string) error {
	return m.votes.CastMapVote(player, mapName)
}

// CastModifierVote forwards the vote to the VoteTally. It is safe for
// concurrent use.
func (m *Match) CastModifierVote(player uuid.UUID, enabled bool) error {
	return m.votes.CastModifierVote(player, enabled)
}

// OnlinePlayers returns all online players ordered by id.
func (m *Match) OnlinePlayers() []uuid.UUID {
	return m.onlinePlayers()
}

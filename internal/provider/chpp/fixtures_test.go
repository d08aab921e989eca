package chpp

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const managerXML = `<?xml version="1.0" encoding="utf-8"?>
<HattrickData>
  <FileName>managercompendium.xml</FileName>
  <Version>1.6</Version>
  <Manager>
    <UserId>123456</UserId>
    <Loginname>testuser</Loginname>
    <Teams>
      <Team>
        <TeamId>456789</TeamId>
        <TeamName>Test FC</TeamName>
        <YouthTeam>
          <YouthTeamId>789012</YouthTeamId>
        </YouthTeam>
      </Team>
      <Team>
        <TeamId>456790</TeamId>
        <TeamName>Second FC</TeamName>
      </Team>
    </Teams>
  </Manager>
</HattrickData>`

const managerNoYouthXML = `<HattrickData>
  <Manager>
    <UserId>123456</UserId>
    <Loginname>testuser</Loginname>
    <Teams>
      <Team><TeamId>456789</TeamId></Team>
    </Teams>
  </Manager>
</HattrickData>`

const teamDetailsXML = `<HattrickData>
  <FileName>teamdetails.xml</FileName>
  <Teams>
    <Team>
      <TeamID>456789</TeamID>
      <TeamName>Test FC</TeamName>
      <ShortTeamName>TFC</ShortTeamName>
      <FoundedDate>2005-03-01 00:00:00</FoundedDate>
      <Arena>
        <ArenaID>99</ArenaID>
        <ArenaName>Test Arena</ArenaName>
      </Arena>
      <League>
        <LeagueID>52</LeagueID>
        <LeagueName>Czech Republic</LeagueName>
        <LeagueLevel>1</LeagueLevel>
      </League>
      <LeagueLevelUnit>
        <LeagueLevelUnitID>3005</LeagueLevelUnitID>
        <LeagueLevelUnitName>IV.12</LeagueLevelUnitName>
        <LeagueLevel>4</LeagueLevel>
      </LeagueLevelUnit>
      <Cup>
        <StillInCup>True</StillInCup>
        <CupName>National Cup</CupName>
        <CupLevel>1</CupLevel>
      </Cup>
      <PowerRating>
        <GlobalRanking>12000</GlobalRanking>
        <PowerRating>850</PowerRating>
      </PowerRating>
      <FanClub>
        <FanClubSize>1500</FanClubSize>
      </FanClub>
      <NumberOfVictories>3</NumberOfVictories>
    </Team>
  </Teams>
</HattrickData>`

const playersXML = `<HattrickData>
  <FileName>players.xml</FileName>
  <Team>
    <TeamID>456789</TeamID>
    <PlayerList>
      <Player>
        <PlayerID>1001</PlayerID>
        <FirstName>Jan</FirstName>
        <LastName>Novak</LastName>
        <PlayerNumber>1</PlayerNumber>
        <PlayerForm>6</PlayerForm>
        <PlayerSkills>
          <StaminaSkill>7</StaminaSkill>
          <KeeperSkill>12</KeeperSkill>
          <DefenderSkill>3</DefenderSkill>
        </PlayerSkills>
      </Player>
      <Player>
        <PlayerID>1002</PlayerID>
        <FirstName>Petr</FirstName>
        <LastName>Svoboda</LastName>
        <Scorer>9</Scorer>
        <Winger>4</Winger>
      </Player>
      <Player>
        <PlayerID>1003</PlayerID>
        <FirstName>Karel</FirstName>
        <LastName>Dvorak</LastName>
        <TransferListed>1</TransferListed>
      </Player>
    </PlayerList>
  </Team>
</HattrickData>`

const playerDetailsXML = `<HattrickData>
  <FileName>playerdetails.xml</FileName>
  <Player>
    <PlayerID>480742036</PlayerID>
    <FirstName>Jan</FirstName>
    <LastName>Novak</LastName>
    <NickName>JN</NickName>
    <PlayerNumber>9</PlayerNumber>
    <Age>23</Age>
    <AgeDays>45</AgeDays>
    <ArrivalDate>2024-01-15 14:30:00</ArrivalDate>
    <PlayerForm>6</PlayerForm>
    <Cards>1</Cards>
    <Leadership>3</Leadership>
    <Agreeability>2</Agreeability>
    <MotherClubBonus>False</MotherClubBonus>
    <NativeLeagueID>52</NativeLeagueID>
    <Salary>25000</Salary>
    <CareerGoals>40</CareerGoals>
    <GoalsCurrentTeam>12</GoalsCurrentTeam>
    <TransferListed>True</TransferListed>
    <TransferDetails>
      <AskingPrice>500000</AskingPrice>
      <Deadline>2024-02-01 20:00:00</Deadline>
      <HighestBid>510000</HighestBid>
      <BidderTeam>
        <TeamID>77</TeamID>
        <TeamName>Bidders</TeamName>
      </BidderTeam>
    </TransferDetails>
    <PlayerSkills>
      <StaminaSkill>7</StaminaSkill>
      <KeeperSkill>1</KeeperSkill>
      <DefenderSkill>5</DefenderSkill>
      <PlaymakerSkill>8</PlaymakerSkill>
      <WingerSkill>6</WingerSkill>
      <PassingSkill>7</PassingSkill>
      <ScorerSkill>10</ScorerSkill>
      <SetPiecesSkill>4</SetPiecesSkill>
    </PlayerSkills>
  </Player>
</HattrickData>`

const matchesXML = `<HattrickData>
  <FileName>matches.xml</FileName>
  <Team>
    <TeamID>456789</TeamID>
    <MatchList>
      <Match>
        <MatchID>700001</MatchID>
        <HomeTeam><HomeTeamID>456789</HomeTeamID><HomeTeamName>Test FC</HomeTeamName></HomeTeam>
        <AwayTeam><AwayTeamID>1</AwayTeamID><AwayTeamName>Rivals</AwayTeamName></AwayTeam>
        <MatchDate>2024-03-02 15:00:00</MatchDate>
        <MatchType>1</MatchType>
        <MatchContextId>3005</MatchContextId>
        <HomeGoals>0</HomeGoals>
        <AwayGoals>0</AwayGoals>
        <Status>FINISHED</Status>
      </Match>
      <Match>
        <MatchID>700002</MatchID>
        <HomeTeam><HomeTeamID>2</HomeTeamID><HomeTeamName>Others</HomeTeamName></HomeTeam>
        <AwayTeam><AwayTeamID>456789</AwayTeamID><AwayTeamName>Test FC</AwayTeamName></AwayTeam>
        <MatchDate>2024-03-09 15:00:00</MatchDate>
        <MatchType>1</MatchType>
        <Status>UPCOMING</Status>
      </Match>
    </MatchList>
  </Team>
</HattrickData>`

const archiveXML = `<HattrickData>
  <FileName>matchesarchive.xml</FileName>
  <Team>
    <TeamID>456789</TeamID>
    <MatchList>
      <Match>
        <MatchID>690001</MatchID>
        <HomeTeamID>456789</HomeTeamID>
        <HomeTeamName>Test FC</HomeTeamName>
        <AwayTeamID>5</AwayTeamID>
        <AwayTeamName>Visitors</AwayTeamName>
        <MatchDate>2023-11-04 15:00:00</MatchDate>
        <HomeGoals>2</HomeGoals>
        <AwayGoals>1</AwayGoals>
      </Match>
    </MatchList>
  </Team>
</HattrickData>`

const unknownPlayerXML = `<HattrickData>
  <FileName>chpperror.xml</FileName>
  <ErrorCode>56</ErrorCode>
  <Error>Unknown player ID</Error>
</HattrickData>`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCHPP serves fixtures by the file query parameter and counts hits.
type fakeCHPP struct {
	hits    atomic.Int32
	bodies  map[string]string
	handler http.HandlerFunc
}

func (f *fakeCHPP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.hits.Add(1)
	if f.handler != nil {
		f.handler(w, r)
		return
	}
	body, ok := f.bodies[r.URL.Query().Get("file")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/xml")
	_, _ = io.WriteString(w, body)
}

func newTestClient(t *testing.T, h http.Handler, mutate ...func(*Config)) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := Config{
		ConsumerKey:    "consumer-key",
		ConsumerSecret: "consumer-secret",
		AccessKey:      "access-key",
		AccessSecret:   "access-secret",
		BaseURL:        srv.URL + "/chppxml.ashx",
		OAuthURL:       srv.URL + "/oauth/",
		RetryBackoff:   time.Millisecond,
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	c, err := NewClient(cfg, discardLogger())
	require.NoError(t, err)
	return c
}

package taslog

const (
	DefaultConfig = `<seelog minlevel="debug">
						<outputs formatid="default">
							<rollingfile type="size" filename="./logs/default.log" maxsize="500000000" maxrolls="10"/>
						</outputs>
						<formats>
							<format id="default" format="%Date/%Time [%Level]  [%File:%Line] %Msg%n" />
						</formats>
					</seelog>`

	GovConfig = `<seelog minlevel="info">
						<outputs formatid="gov">
							<rollingfile type="size" filename="./logs/gov_LOG_INDEX.log" maxsize="500000000" maxrolls="10"/>
						</outputs>
						<formats>
							<format id="gov" format="%Date/%Time [%Level]  [%File:%Line] %Msg%n" />
						</formats>
					</seelog>`

	SlowLogConfig = `<seelog minlevel="warn">
						<outputs formatid="slow">
							<rollingfile type="size" filename="./logs/slow_LOG_INDEX.log" maxsize="100000000" maxrolls="3"/>
						</outputs>
						<formats>
							<format id="slow" format="%Date/%Time [%Level]  %Msg%n" />
						</formats>
					</seelog>`

	// ConsoleConfig writes to stdout only, used by the command line tool
	ConsoleConfig = `<seelog minlevel="info">
						<outputs formatid="console">
							<console/>
						</outputs>
						<formats>
							<format id="console" format="[%Level] %Msg%n" />
						</formats>
					</seelog>`
)

const indexPlaceholder = "LOG_INDEX"
